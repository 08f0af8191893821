package store

import (
	"context"

	"github.com/wanderkit/wanderkit/core"
)

// PopularityBoard 是基于 KeyValueStore 有序集合的体验热度榜。
//
// 引擎初始化时把目录全量热度分发布进榜单（ZAdd），之后可以用
// Top 取热度排名（回退列表、运营看板），用 Score 查单个体验的热度分。
// 榜单随特征索引一起整体重建，不做增量维护。
type PopularityBoard struct {
	kv core.KeyValueStore

	// Key 是有序集合的 key，默认 "popularity:rank"
	Key string
}

// NewPopularityBoard 创建热度榜。key 为空时取默认值。
func NewPopularityBoard(kv core.KeyValueStore, key string) *PopularityBoard {
	if key == "" {
		key = "popularity:rank"
	}
	return &PopularityBoard{kv: kv, Key: key}
}

// Publish 写入/覆盖一个体验的热度分。
func (b *PopularityBoard) Publish(ctx context.Context, experienceID string, score float64) error {
	return b.kv.ZAdd(ctx, b.Key, score, experienceID)
}

// Top 返回热度分降序的前 n 个体验 ID。
func (b *PopularityBoard) Top(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	return b.kv.ZRange(ctx, b.Key, 0, int64(n-1))
}

// Score 查询单个体验的热度分，不在榜时返回 NOT_FOUND。
func (b *PopularityBoard) Score(ctx context.Context, experienceID string) (float64, error) {
	return b.kv.ZScore(ctx, b.Key, experienceID)
}
