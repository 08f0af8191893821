package filter

import (
	"context"

	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/feature"
)

// AvailabilityFilter 是日期窗口过滤器：剔除可订窗口与请求日期不相交的体验。
// 请求没带日期窗口时不启用；体验侧零值表示该侧不限。
type AvailabilityFilter struct {
	Index *feature.Index
}

func (f *AvailabilityFilter) Name() string {
	return "filter.availability"
}

func (f *AvailabilityFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil || rctx.Dates.Empty() {
		return false, nil
	}
	if item == nil {
		return true, nil
	}

	e, ok := f.Index.Get(item.ID)
	if !ok {
		return true, nil
	}

	// 窗口相交判定：任一侧不限视为无穷
	if e.AvailableTo > 0 && !rctx.Dates.From.IsZero() && rctx.Dates.From.Unix() > e.AvailableTo {
		return true, nil
	}
	if e.AvailableFrom > 0 && !rctx.Dates.To.IsZero() && rctx.Dates.To.Unix() < e.AvailableFrom {
		return true, nil
	}
	return false, nil
}
