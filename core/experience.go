package core

import "context"

// PriceTier 是价格档位，由原始价格离散化得到。
// 内容相似度按档位匹配，而不是按原始价格做数值回归。
type PriceTier string

const (
	PriceTierBudget  PriceTier = "budget"  // < 50
	PriceTierMid     PriceTier = "mid"     // 50 ~ 150
	PriceTierPremium PriceTier = "premium" // 150 ~ 400
	PriceTierLuxury  PriceTier = "luxury"  // >= 400
)

// PriceTierOf 把原始价格映射到档位。
func PriceTierOf(price float64) PriceTier {
	switch {
	case price < 50:
		return PriceTierBudget
	case price < 150:
		return PriceTierMid
	case price < 400:
		return PriceTierPremium
	default:
		return PriceTierLuxury
	}
}

// PopularityStats 是体验的全局热度统计，由目录方维护。
// 热度打分公式：0.1*Views + 0.4*Bookings + 0.3*Rating + 0.2*ReviewCount。
type PopularityStats struct {
	Views       int64   `json:"views"`
	Bookings    int64   `json:"bookings"`
	Rating      float64 `json:"rating"` // 平均评分 0~5
	ReviewCount int64   `json:"review_count"`
}

// Experience 是单个旅行体验的特征向量。
// 由目录（Catalog）在初始化时整体导入，引擎只读不写。
type Experience struct {
	ID                string    `json:"id"`
	Category          string    `json:"category"`
	Price             float64   `json:"price"`
	LocationRegion    string    `json:"location_region"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	Rating            float64   `json:"rating"`
	AccessibilityTags []string  `json:"accessibility_tags"`
	DurationMinutes   int       `json:"duration_minutes"`
	Indoor            bool      `json:"indoor"`
	FamilyFriendly    bool      `json:"family_friendly"`

	// AvailableFrom / AvailableTo 是可预订窗口（零值表示不限）。
	AvailableFrom int64 `json:"available_from,omitempty"` // unix 秒
	AvailableTo   int64 `json:"available_to,omitempty"`

	Stats PopularityStats `json:"stats"`
}

// Tier 返回体验的价格档位。
func (e *Experience) Tier() PriceTier {
	return PriceTierOf(e.Price)
}

// PopularityScore 按固定公式计算热度分。
func (s PopularityStats) PopularityScore() float64 {
	return 0.1*float64(s.Views) + 0.4*float64(s.Bookings) + 0.3*s.Rating + 0.2*float64(s.ReviewCount)
}

// Catalog 是体验目录的领域接口（外部协作方）。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（catalog）实现
//   - 引擎在初始化时整体拉取目录构建特征索引，打分请求按需单查
//   - AddRating 把用户评分回写到目录的热度聚合（rate 交互的副作用）
type Catalog interface {
	// Name 返回目录后端名称（用于日志/监控）
	Name() string

	// AllExperiences 返回目录中的全部体验
	AllExperiences(ctx context.Context) ([]*Experience, error)

	// GetExperience 按 ID 查询单个体验，不存在时返回 NOT_FOUND
	GetExperience(ctx context.Context, id string) (*Experience, error)

	// AddRating 把一次评分并入体验的热度聚合
	AddRating(ctx context.Context, id string, rating float64) error
}

// ErrExperienceNotFound 表示体验不存在。
var ErrExperienceNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: experience not found")
