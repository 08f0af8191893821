package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/wanderkit/wanderkit/core"
)

// Recorder 是交互记录器：把交互事件并入画像，并维护交互日志与异步落盘。
//
// 一次 Record 的流程：
//  1. 查找或懒创建用户画像
//  2. 目标体验加分（weight * learningRate，封顶 1），其余体验整体衰减
//  3. 事件追加进有界交互日志
//  4. 画像快照排入 Persister（失败只记日志，不影响调用方）
type Recorder struct {
	Table *Table
	Log   *InteractionLog

	// Persister 可为 nil（纯内存运行，例如测试）
	Persister *Persister

	// Catalog 用于 rate 交互回写热度聚合，可为 nil
	Catalog core.Catalog

	// LearningRate 学习率，默认 0.1
	LearningRate float64

	// DecayFactor 衰减因子，默认 0.95
	DecayFactor float64

	Logger *zap.Logger
}

// NewRecorder 创建记录器并填充默认参数。
func NewRecorder(table *Table, log *InteractionLog, persister *Persister, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		Table:        table,
		Log:          log,
		Persister:    persister,
		LearningRate: 0.1,
		DecayFactor:  0.95,
		Logger:       logger.Named("recorder"),
	}
}

// Record 记录一次交互。返回已写入日志的事件。
// 仅在输入非法（空主键/未知类型）时返回错误；持久化失败不会传播。
func (r *Recorder) Record(
	ctx context.Context,
	userID, experienceID string,
	typ core.InteractionType,
	ictx map[string]any,
) (*core.Interaction, error) {
	ev := core.NewInteraction(userID, experienceID, typ)
	ev.Context = ictx
	return r.record(ctx, ev)
}

// Rate 是 Record(type=rate) 的语法糖：附带评分写入事件，
// 并把评分并入目录的热度聚合。
func (r *Recorder) Rate(
	ctx context.Context,
	userID, experienceID string,
	rating float64,
	review string,
) (*core.Interaction, error) {
	if rating < 1 || rating > 5 {
		return nil, core.ErrInvalidInteraction
	}

	ev := core.NewInteraction(userID, experienceID, core.InteractionRate)
	ev.Rating = rating
	if review != "" {
		ev.Context = map[string]any{"review": review}
	}

	out, err := r.record(ctx, ev)
	if err != nil {
		return nil, err
	}

	// 热度聚合是目录方的职责；回写失败降级为日志
	if r.Catalog != nil {
		if err := r.Catalog.AddRating(ctx, experienceID, rating); err != nil {
			r.Logger.Warn("catalog rating aggregate update failed",
				zap.String("experience_id", experienceID),
				zap.Error(err))
		}
	}
	return out, nil
}

// record 应用事件：画像更新 → 日志追加 → 异步落盘。事件入日志后不可再修改。
func (r *Recorder) record(_ context.Context, ev *core.Interaction) (*core.Interaction, error) {
	if ev.UserID == "" || ev.ExperienceID == "" || !ev.Type.Valid() {
		return nil, core.ErrInvalidInteraction
	}

	lr := r.LearningRate
	if lr <= 0 {
		lr = 0.1
	}
	decay := r.DecayFactor
	if decay <= 0 || decay > 1 {
		decay = 0.95
	}

	var snapshot *core.UserProfile
	r.Table.Update(ev.UserID, func(p *core.UserProfile) {
		p.ApplyInteraction(ev.ExperienceID, ev.Type, lr, decay)
		snapshot = p.Clone()
	})

	if r.Log != nil {
		r.Log.Append(ev)
	}
	if r.Persister != nil {
		r.Persister.Enqueue(snapshot)
	}
	return ev, nil
}
