package recall

import (
	"context"

	"github.com/wanderkit/wanderkit/core"
)

// Source 是一个打分来源：独立产出带分数与理由标签的候选列表。
// 三个实现：CollaborativeSource / ContentSource / PopularitySource。
type Source interface {
	Name() string
	Score(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// ProfileProvider 是打分来源读取画像的接口（profile.Table 实现）。
// 返回的都是深拷贝快照，打分过程中不持有画像锁。
type ProfileProvider interface {
	Snapshot(userID string) (*core.UserProfile, bool)
	SnapshotAll() []*core.UserProfile
}

// 标准 Label key。
const (
	LabelScoreSource = "score_source" // collaborative / content / popularity
	LabelRationale   = "rationale"    // 面向用户的推荐理由
)
