package pipeline

import (
	"context"

	"github.com/wanderkit/wanderkit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindScore       Kind = "score"       // 打分阶段：生成加权候选集
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合请求约束的候选
	KindReRank      Kind = "rerank"      // 重排阶段：多样性约束与截断
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充解释或最终结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便打分生成、过滤截断、重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
