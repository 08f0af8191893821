package recall

import (
	"context"
	"sort"

	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/feature"
	"github.com/wanderkit/wanderkit/pkg/utils"
)

// ContentSource 是基于内容的打分来源（Content-Based）。
//
// 核心思想："用户喜欢具有某些特征的体验，推荐具有相似特征的其他体验"
//
// 算法流程：
//  1. 把用户交互过的体验按偏好分聚合成特征分布（类别/价格档/区域/无障碍桶）
//  2. 对每个用户没见过的目录体验计算加权相似度
//  3. 保留相似度 > MinSimilarity 的候选，按分数排序
//
// 冷启动：画像为空时退回显式偏好（声明的类别/预算档/无障碍需求）构桶；
// 两者都为空则不产出。
type ContentSource struct {
	Index    *feature.Index
	Profiles ProfileProvider

	// MinSimilarity 相似度阈值，默认 0.3
	MinSimilarity float64

	// TopK 最终返回的候选数，<= 0 表示不截断
	TopK int
}

func (s *ContentSource) Name() string {
	return "score.content"
}

// rationaleByDimension 把 dominant feature 映射成面向用户的推荐理由。
var rationaleByDimension = map[string]string{
	feature.DimCategory:      "matches the categories you enjoy",
	feature.DimPriceTier:     "fits your usual budget",
	feature.DimRegion:        "in a region you keep coming back to",
	feature.DimAccessibility: "meets your accessibility needs",
}

func (s *ContentSource) Score(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if s.Index == nil || s.Profiles == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	minSim := s.MinSimilarity
	if minSim <= 0 {
		minSim = 0.3
	}

	var (
		buckets *feature.Buckets
		seen    map[string]float64
	)
	if target, ok := s.Profiles.Snapshot(rctx.UserID); ok {
		seen = target.Preferences
		if len(target.Preferences) > 0 {
			buckets = s.Index.UserBuckets(target.Preferences)
		} else if !target.Explicit.Empty() {
			buckets = feature.ExplicitBuckets(target.Explicit)
		}
	}
	if buckets == nil || buckets.Empty() {
		return nil, nil
	}

	out := make([]*core.Item, 0)
	for _, e := range s.Index.All() {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		sim, dominant := buckets.Similarity(e)
		if sim <= minSim {
			continue
		}

		it := core.NewItem(e.ID)
		it.Score = sim
		it.Meta["category"] = e.Category
		it.PutLabel(LabelScoreSource, utils.Label{Value: "content", Source: "score"})
		rationale := rationaleByDimension[dominant]
		if rationale == "" {
			rationale = "similar to experiences you enjoyed"
		}
		it.PutLabel(LabelRationale, utils.Label{Value: rationale, Source: "score"})
		out = append(out, it)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if s.TopK > 0 && len(out) > s.TopK {
		out = out[:s.TopK]
	}
	return out, nil
}
