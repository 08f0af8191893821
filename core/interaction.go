package core

import (
	"time"

	"github.com/google/uuid"
)

// InteractionType 是用户交互行为的类型。
type InteractionType string

const (
	InteractionView   InteractionType = "view"
	InteractionLike   InteractionType = "like"
	InteractionSave   InteractionType = "save"
	InteractionShare  InteractionType = "share"
	InteractionBook   InteractionType = "book"
	InteractionRate   InteractionType = "rate"
	InteractionReview InteractionType = "review"
)

// interactionWeights 是各交互类型的固定权重表。
// 权重表达行为的偏好强度：预订 > 评论 > 评分 > 收藏 > 分享 > 点赞 > 浏览。
var interactionWeights = map[InteractionType]float64{
	InteractionView:   0.1,
	InteractionLike:   0.3,
	InteractionSave:   0.5,
	InteractionShare:  0.4,
	InteractionBook:   0.8,
	InteractionRate:   0.6,
	InteractionReview: 0.7,
}

// Weight 返回交互类型的偏好权重；未知类型返回 0。
func (t InteractionType) Weight() float64 {
	return interactionWeights[t]
}

// Valid 检查交互类型是否在权重表内。
func (t InteractionType) Valid() bool {
	_, ok := interactionWeights[t]
	return ok
}

// Interaction 是一次用户交互事件。
//
// 事件一经记录不可变；交互日志只是辅助历史（用于相似度观测/回放），
// 偏好的权威来源是 UserProfile.Preferences 中衰减后的分数。
type Interaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	ExperienceID string          `json:"experience_id"`
	Type         InteractionType `json:"type"`
	Timestamp    time.Time       `json:"timestamp"`

	// Context 是自由形式的场景信息（来源页面、搜索词等）
	Context map[string]any `json:"context,omitempty"`

	// Rating 仅 Type == rate 时有效，取值 1~5
	Rating float64 `json:"rating,omitempty"`
}

// NewInteraction 创建一条交互事件，自动分配事件 ID 与时间戳。
func NewInteraction(userID, experienceID string, typ InteractionType) *Interaction {
	return &Interaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		ExperienceID: experienceID,
		Type:         typ,
		Timestamp:    time.Now(),
	}
}

// ErrInvalidInteraction 表示交互事件非法（未知类型/缺少主键）。
var ErrInvalidInteraction = NewDomainError(ModuleProfile, ErrorCodeInvalidInput, "profile: invalid interaction")
