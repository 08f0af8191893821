// Package wanderkit 是旅行体验内容应用的个性化推荐引擎。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Blend → Filter → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 在线自适应: 画像由交互事件增量更新（加分 + 衰减），无离线训练
// - 显式实例: 引擎状态全部挂在 engine.Engine 上，不依赖全局可变状态
package wanderkit

import "github.com/wanderkit/wanderkit/pipeline"

// 轻量 facade：便于用户直接 import "wanderkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindScore       = pipeline.KindScore
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
