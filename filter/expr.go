package filter

import (
	"context"

	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/pkg/dsl"
)

// ExprFilter 是基于 CEL 表达式的规则过滤器。
// 表达式是"剔除规则"：求值为 true 的候选被过滤掉。
//
// 示例：
//   - `label.score_source == "popularity" && item.score < 1.0`
//   - `item.meta.category == "nightlife" && rctx.params.family_trip == true`
type ExprFilter struct {
	// Expr 是 CEL 剔除规则；空表达式表示不启用
	Expr string
}

func (f *ExprFilter) Name() string {
	return "filter.rule"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" {
		return false, nil
	}
	ev := dsl.NewEval(item, rctx)
	matched, err := ev.Evaluate(f.Expr)
	if err != nil {
		// 规则求值失败时保留候选（fail-open），错误交给 Node 层消化
		return false, err
	}
	return matched, nil
}
