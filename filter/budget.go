package filter

import (
	"context"

	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/feature"
)

// BudgetFilter 是预算过滤器：剔除价格超出 MaxBudget 的体验。
// 请求没带预算（<= 0）时不启用。
type BudgetFilter struct {
	Index *feature.Index
}

func (f *BudgetFilter) Name() string {
	return "filter.budget"
}

func (f *BudgetFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil || rctx.MaxBudget <= 0 {
		return false, nil
	}
	if item == nil {
		return true, nil
	}

	e, ok := f.Index.Get(item.ID)
	if !ok {
		return true, nil
	}
	return e.Price > rctx.MaxBudget, nil
}
