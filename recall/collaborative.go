package recall

import (
	"context"
	"sort"

	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/pkg/utils"
)

// CollaborativeSource 是基于用户的协同过滤打分来源（User-CF）。
//
// 核心思想："兴趣相似的用户，喜欢相似的体验"
//
// 算法流程：
//  1. 目标用户画像 → 偏好向量
//  2. 与其余画像逐个计算皮尔逊相似度（共同体验 < 2 判 0）
//  3. 只保留相似度 > MinSimilarity 的正相关邻居，取 TopK
//  4. 邻居喜欢（分数 > LikedThreshold）且目标未见过的体验，
//     按 similarity * their_score 加权累积
//
// 工程特征：
//  - 可解释性：强（"相似用户也喜欢"）
//  - 冷启动：差（空画像直接返回空，交给内容/热度兜底）
type CollaborativeSource struct {
	Profiles ProfileProvider

	// TopKSimilarUsers 参与投票的相似用户数，默认 50
	TopKSimilarUsers int

	// MinSimilarity 相似度阈值，默认 0.3；只用正相关
	MinSimilarity float64

	// LikedThreshold 邻居"喜欢"的判定阈值，默认 0.5
	LikedThreshold float64

	// TopK 最终返回的候选数，<= 0 表示不截断
	TopK int
}

func (s *CollaborativeSource) Name() string {
	return "score.collaborative"
}

func (s *CollaborativeSource) Score(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if s.Profiles == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	target, ok := s.Profiles.Snapshot(rctx.UserID)
	if !ok || len(target.Preferences) == 0 {
		return nil, nil
	}

	topK := s.TopKSimilarUsers
	if topK <= 0 {
		topK = 50
	}
	minSim := s.MinSimilarity
	if minSim <= 0 {
		minSim = 0.3
	}
	liked := s.LikedThreshold
	if liked <= 0 {
		liked = 0.5
	}

	// 计算每个用户与目标用户的相似度
	type neighbor struct {
		profile    *core.UserProfile
		similarity float64
	}
	neighbors := make([]neighbor, 0)

	for _, other := range s.Profiles.SnapshotAll() {
		if other.UserID == target.UserID {
			continue
		}
		sim := UserSimilarity(target, other)
		if sim > minSim {
			neighbors = append(neighbors, neighbor{profile: other, similarity: sim})
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].profile.UserID < neighbors[j].profile.UserID
	})
	if len(neighbors) > topK {
		neighbors = neighbors[:topK]
	}

	// 加权累积：score[exp] = Σ(similarity * neighborScore)
	// 只计邻居"喜欢"且目标用户没见过的体验
	candidates := make(map[string]float64)
	for _, nb := range neighbors {
		for expID, score := range nb.profile.Preferences {
			if score <= liked {
				continue
			}
			if _, seen := target.Preferences[expID]; seen {
				continue
			}
			candidates[expID] += nb.similarity * score
		}
	}

	out := make([]*core.Item, 0, len(candidates))
	for expID, score := range candidates {
		it := core.NewItem(expID)
		it.Score = score
		it.PutLabel(LabelScoreSource, utils.Label{Value: "collaborative", Source: "score"})
		it.PutLabel(LabelRationale, utils.Label{Value: "users with similar interests also liked this", Source: "score"})
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
