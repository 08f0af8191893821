package recall

import (
	"math"

	"github.com/wanderkit/wanderkit/core"
)

// minCommonExperiences 是计算用户相似度所需的最少共同体验数。
// 共同体验不足时信号太弱，相似度直接判 0。
const minCommonExperiences = 2

// UserSimilarity 计算两个画像的皮尔逊相关系数（协同信号）。
//
// 规则：
//   - 取两个偏好表的共同体验集合；少于 2 个时返回 0（信号不足）
//   - 在配对分数向量上计算 Pearson，取值 [-1,1]
//   - 两侧都是等值向量且逐点相等时视为完全一致，返回 1
//     （同一批体验打了相同的分，方差为 0 但方向完全对齐）
func UserSimilarity(a, b *core.UserProfile) float64 {
	if a == nil || b == nil {
		return 0
	}

	var x, y []float64
	for id, sa := range a.Preferences {
		if sb, ok := b.Preferences[id]; ok {
			x = append(x, sa)
			y = append(y, sb)
		}
	}
	if len(x) < minCommonExperiences {
		return 0
	}
	return pearsonCorrelation(x, y)
}

// pearsonCorrelation 计算皮尔逊相关系数。
func pearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(len(x))
	meanY /= float64(len(y))

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		// 双侧零方差且逐点相等 → 完全一致
		if varX == 0 && varY == 0 {
			for i := range x {
				if x[i] != y[i] {
					return 0
				}
			}
			return 1
		}
		return 0
	}

	return cov / math.Sqrt(varX*varY)
}
