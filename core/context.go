package core

import (
	"time"

	"github.com/wanderkit/wanderkit/pkg/utils"
)

// GeoPoint 是经纬度坐标。
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DateRange 是出行日期窗口。零值字段表示该侧不限。
type DateRange struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// Empty 检查窗口是否完全不限。
func (r DateRange) Empty() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// RecommendContext 承载用户/场景/请求信息，贯穿整个 Pipeline 透传。
//
// Location + RadiusKM 驱动地理过滤，Dates 驱动可订窗口过滤，
// MaxBudget 驱动预算过滤；零值一律表示"该过滤不启用"。
type RecommendContext struct {
	UserID string

	// Location 是请求的参考位置（nil 表示不启用地理过滤）
	Location *GeoPoint
	// RadiusKM 是地理过滤半径（公里），<= 0 表示不启用
	RadiusKM float64

	// Dates 是期望出行窗口
	Dates DateRange

	// MaxBudget 是价格上限，<= 0 表示不启用
	MaxBudget float64

	// Region 是区域提示（用于热度打分的场景匹配），可为空
	Region string

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数（time_of_day, device_type 等自由字段）
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
