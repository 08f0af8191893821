package rerank

import (
	"context"
	"math"
	"math/rand"

	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/feature"
	"github.com/wanderkit/wanderkit/pipeline"
)

// Diversity 是多样性重排 Node：限制单一类别在结果里的占比。
//
// 规则：
//   - 类别配额 cap = ceil(MaxRecommendations / 4)，即单类别最多约 25%
//   - 顺序遍历已排序候选，类别计数未达 cap 直接放行
//   - 达到 cap 后，仅以 DiversityWeight 的概率放行超额候选——
//     既保留多样性约束，又不完全压制强势类别
//
// DiversityWeight = 0 时配额是硬约束。随机源显式注入，
// 测试时传入固定种子即可复现。
type Diversity struct {
	Index *feature.Index

	// MaxRecommendations 用于推导类别配额，默认 20
	MaxRecommendations int

	// DiversityWeight 超额放行概率 [0,1]，默认 0.2
	DiversityWeight float64

	// Rand 是注入的随机源；为 nil 时超额候选一律不放行（等价权重 0）
	Rand *rand.Rand
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	maxRecs := n.MaxRecommendations
	if maxRecs <= 0 {
		maxRecs = 20
	}
	quota := int(math.Ceil(float64(maxRecs) / 4))

	counts := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		cate := n.categoryOf(it)
		if cate == "" {
			// 无类别信息的候选不参与配额
			out = append(out, it)
			continue
		}

		if counts[cate] < quota {
			counts[cate]++
			out = append(out, it)
			continue
		}

		// 超额：按概率放行
		if n.DiversityWeight > 0 && n.Rand != nil && n.Rand.Float64() < n.DiversityWeight {
			counts[cate]++
			out = append(out, it)
		}
	}

	return out, nil
}

// categoryOf 解析候选的类别。来源优先级：
// - 特征索引
// - meta["category"] (string)
// - label["category"].Value
func (n *Diversity) categoryOf(it *core.Item) string {
	if n.Index != nil {
		if e, ok := n.Index.Get(it.ID); ok && e.Category != "" {
			return e.Category
		}
	}
	if it.Meta != nil {
		if v, ok := it.Meta["category"]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return it.GetLabel("category")
}
