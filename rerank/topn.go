package rerank

import (
	"context"

	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在重排后截取前 N 个候选。
//
// 使用场景：
//   - 限制最终推荐数量（默认 max_recommendations = 20）
//   - 配合多样性重排使用（先配额、后截断）
type TopNNode struct {
	// N 要保留的候选数量（Top N）
	// 如果 N <= 0，则返回所有候选（不截断）
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 {
		return items, nil
	}
	if len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
