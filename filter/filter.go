package filter

import (
	"context"

	"github.com/wanderkit/wanderkit/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
//
// 约定：过滤器必须是纯谓词——只依据请求上下文和候选本身做判断，
// 不得新增候选。这保证了"加严过滤条件结果集只会变小"的单调性。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}
