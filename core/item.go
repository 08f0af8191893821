package core

import "github.com/wanderkit/wanderkit/pkg/utils"

// Item 是推荐链路中的统一承载结构：分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
// ID 即体验（Experience）的唯一标识。
type Item struct {
	ID     string
	Score  float64
	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Score:  0,
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// GetLabel 读取 Label 值，不存在时返回空串。
func (it *Item) GetLabel(key string) string {
	if it.Labels == nil {
		return ""
	}
	return it.Labels[key].Value
}

// Recommendation 是引擎对外输出的最终结构。
// Confidence = clamp(Score, 0, 1)；Algorithms 记录贡献过分数的打分来源；
// Explanation 是面向用户的可读解释。
type Recommendation struct {
	ExperienceID string   `json:"experience_id"`
	Score        float64  `json:"score"`
	Confidence   float64  `json:"confidence"`
	Algorithms   []string `json:"algorithms"`
	Explanation  string   `json:"explanation"`
}
