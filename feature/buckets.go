package feature

import "github.com/wanderkit/wanderkit/core"

// 内容相似度的维度权重：类别 0.4、价格档位 0.2、区域 0.3、无障碍兼容 0.1。
const (
	weightCategory      = 0.4
	weightPriceTier     = 0.2
	weightRegion        = 0.3
	weightAccessibility = 0.1
)

// 维度名（用于 dominant feature 的解释）。
const (
	DimCategory      = "category"
	DimPriceTier     = "price_tier"
	DimRegion        = "region"
	DimAccessibility = "accessibility"
)

// Buckets 是用户的聚合特征偏好分布。
//
// 构建方式：遍历用户交互过的每个体验，把该体验的偏好分累加进
// 对应特征值的桶（类别桶、价格档位桶、区域桶、无障碍标签桶）。
// 相似度计算时每个维度按桶分/桶总和归一化，再乘维度权重。
type Buckets struct {
	Category      map[string]float64
	PriceTier     map[core.PriceTier]float64
	Region        map[string]float64
	Accessibility map[string]float64
}

func newBuckets() *Buckets {
	return &Buckets{
		Category:      make(map[string]float64),
		PriceTier:     make(map[core.PriceTier]float64),
		Region:        make(map[string]float64),
		Accessibility: make(map[string]float64),
	}
}

// Empty 检查分布是否没有任何信号。
func (b *Buckets) Empty() bool {
	return len(b.Category) == 0 && len(b.PriceTier) == 0 && len(b.Region) == 0 && len(b.Accessibility) == 0
}

// UserBuckets 从用户偏好分布（experienceID -> score）聚合特征桶。
// 偏好中引用了目录外体验时直接跳过（目录收缩后的残留偏好）。
func (ix *Index) UserBuckets(preferences map[string]float64) *Buckets {
	b := newBuckets()
	for id, score := range preferences {
		if score <= 0 {
			continue
		}
		e, ok := ix.vectors[id]
		if !ok {
			continue
		}
		if e.Category != "" {
			b.Category[e.Category] += score
		}
		b.PriceTier[e.Tier()] += score
		if e.LocationRegion != "" {
			b.Region[e.LocationRegion] += score
		}
		for _, tag := range e.AccessibilityTags {
			b.Accessibility[tag] += score
		}
	}
	return b
}

// ExplicitBuckets 从显式偏好构建冷启动分布：每个声明的特征值记 1 分。
func ExplicitBuckets(p core.ExplicitPreferences) *Buckets {
	b := newBuckets()
	for _, c := range p.Categories {
		b.Category[c] = 1
	}
	if p.BudgetTier != "" {
		b.PriceTier[p.BudgetTier] = 1
	}
	for _, tag := range p.AccessibilityNeeds {
		b.Accessibility[tag] = 1
	}
	return b
}

// Similarity 计算候选体验与用户分布的加权相似度，并返回贡献最大的维度。
//
// 每个维度贡献 weight * bucket[候选特征值] / 桶总和；桶总和为 0 的维度贡献 0。
// 返回值落在 [0,1]。
func (b *Buckets) Similarity(e *core.Experience) (score float64, dominant string) {
	best := 0.0

	if t := weightCategory * share(b.Category, e.Category); t > 0 {
		score += t
		if t > best {
			best, dominant = t, DimCategory
		}
	}
	if t := weightPriceTier * tierShare(b.PriceTier, e.Tier()); t > 0 {
		score += t
		if t > best {
			best, dominant = t, DimPriceTier
		}
	}
	if t := weightRegion * share(b.Region, e.LocationRegion); t > 0 {
		score += t
		if t > best {
			best, dominant = t, DimRegion
		}
	}
	if t := weightAccessibility * tagShare(b.Accessibility, e.AccessibilityTags); t > 0 {
		score += t
		if t > best {
			best, dominant = t, DimAccessibility
		}
	}
	return score, dominant
}

func share(bucket map[string]float64, key string) float64 {
	if key == "" || len(bucket) == 0 {
		return 0
	}
	var total float64
	for _, v := range bucket {
		total += v
	}
	if total == 0 {
		return 0
	}
	return bucket[key] / total
}

func tierShare(bucket map[core.PriceTier]float64, tier core.PriceTier) float64 {
	if len(bucket) == 0 {
		return 0
	}
	var total float64
	for _, v := range bucket {
		total += v
	}
	if total == 0 {
		return 0
	}
	return bucket[tier] / total
}

// tagShare 取候选体验各无障碍标签份额之和，封顶 1（兼容性度量）。
func tagShare(bucket map[string]float64, tags []string) float64 {
	if len(tags) == 0 || len(bucket) == 0 {
		return 0
	}
	var total float64
	for _, v := range bucket {
		total += v
	}
	if total == 0 {
		return 0
	}
	var matched float64
	for _, tag := range tags {
		matched += bucket[tag]
	}
	s := matched / total
	if s > 1 {
		s = 1
	}
	return s
}
