package recall

import (
	"context"
	"sort"

	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/feature"
	"github.com/wanderkit/wanderkit/pkg/utils"
)

// PopularitySource 是热度打分来源，也是冷启动兜底。
//
// 分数公式（固定系数）：
//
//	0.1*views + 0.4*bookings + 0.3*rating + 0.2*review_count
//
// 场景匹配：请求带 Region 提示时只看该区域的体验，否则全目录。
// 默认只产出 Top 10。
type PopularitySource struct {
	Index *feature.Index

	// TopK 返回的候选数，默认 10
	TopK int
}

func (s *PopularitySource) Name() string {
	return "score.popularity"
}

func (s *PopularitySource) Score(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if s.Index == nil {
		return nil, nil
	}

	region := ""
	if rctx != nil {
		region = rctx.Region
	}

	out := make([]*core.Item, 0)
	for _, e := range s.Index.All() {
		if region != "" && e.LocationRegion != region {
			continue
		}
		it := core.NewItem(e.ID)
		it.Score = e.Stats.PopularityScore()
		it.Meta["category"] = e.Category
		it.PutLabel(LabelScoreSource, utils.Label{Value: "popularity", Source: "score"})
		it.PutLabel(LabelRationale, utils.Label{Value: "popular among users like you", Source: "score"})
		out = append(out, it)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})

	topK := s.TopK
	if topK <= 0 {
		topK = 10
	}
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}
