package core

import (
	"context"
	"time"
)

// ExplicitPreferences 是用户显式声明的偏好提示。
// 仅在 Preferences 为空（冷启动）时被内容打分使用。
type ExplicitPreferences struct {
	Categories         []string  `json:"categories,omitempty"`
	BudgetTier         PriceTier `json:"budget_tier,omitempty"`
	AccessibilityNeeds []string  `json:"accessibility_needs,omitempty"`
}

// Empty 检查是否没有任何显式偏好。
func (p ExplicitPreferences) Empty() bool {
	return len(p.Categories) == 0 && p.BudgetTier == "" && len(p.AccessibilityNeeds) == 0
}

// UserProfile 是用户偏好画像的核心抽象。
//
// 一句话定义：画像 = "体验 → [0,1] 偏好分" 的衰减累积。
//
// 更新规则（ApplyInteraction）：
//   - 目标体验：score = min(1, score + weight * learningRate)
//   - 其余体验：score *= decayFactor
//
// 衰减让旧偏好渐近趋零但不删除，等价于不存每条时间戳的近因加权。
// 画像首次交互时懒创建，永不删除。
type UserProfile struct {
	UserID string `json:"user_id"`

	// Preferences key: experienceID, value: 偏好分 [0,1]
	Preferences map[string]float64 `json:"preferences"`

	// Explicit 是用户显式声明的偏好（冷启动兜底）
	Explicit ExplicitPreferences `json:"explicit,omitempty"`

	InteractionCount int64     `json:"interaction_count"`
	LastActive       time.Time `json:"last_active"`
}

// NewUserProfile 创建一个空画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:      userID,
		Preferences: make(map[string]float64),
	}
}

// ApplyInteraction 把一次交互并入画像：目标体验加分、其余体验衰减。
// 调用方负责并发控制（同一用户的更新必须串行）。
func (p *UserProfile) ApplyInteraction(experienceID string, typ InteractionType, learningRate, decayFactor float64) {
	if p.Preferences == nil {
		p.Preferences = make(map[string]float64)
	}

	for id := range p.Preferences {
		if id != experienceID {
			p.Preferences[id] *= decayFactor
		}
	}

	score := p.Preferences[experienceID] + typ.Weight()*learningRate
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	p.Preferences[experienceID] = score

	p.InteractionCount++
	p.LastActive = time.Now()
}

// Clone 返回画像的深拷贝，用于把一致的快照交给异步持久化/打分。
func (p *UserProfile) Clone() *UserProfile {
	cp := *p
	cp.Preferences = make(map[string]float64, len(p.Preferences))
	for k, v := range p.Preferences {
		cp.Preferences[k] = v
	}
	cp.Explicit.Categories = append([]string(nil), p.Explicit.Categories...)
	cp.Explicit.AccessibilityNeeds = append([]string(nil), p.Explicit.AccessibilityNeeds...)
	return &cp
}

// Liked 返回偏好分大于阈值的体验集合（协同打分中的"喜欢"判定）。
func (p *UserProfile) Liked(threshold float64) map[string]float64 {
	out := make(map[string]float64)
	for id, score := range p.Preferences {
		if score > threshold {
			out[id] = score
		}
	}
	return out
}

// ProfileStore 是持久化画像存储的领域接口（外部协作方）。
//
// 语义：
//   - LoadAll 在引擎启动时调用一次
//   - Save 在每次交互后异步调用（fire-and-forget，at-least-once）
//   - 进程内权威状态是内存画像表；ProfileStore 只负责跨进程重启的持久性
type ProfileStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// LoadAll 加载全部画像
	LoadAll(ctx context.Context) ([]*UserProfile, error)

	// Save 持久化单个画像（覆盖写）
	Save(ctx context.Context, profile *UserProfile) error
}
