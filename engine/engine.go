package engine

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wanderkit/wanderkit/blend"
	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/feature"
	"github.com/wanderkit/wanderkit/filter"
	"github.com/wanderkit/wanderkit/pipeline"
	"github.com/wanderkit/wanderkit/profile"
	"github.com/wanderkit/wanderkit/recall"
	"github.com/wanderkit/wanderkit/rerank"
	"github.com/wanderkit/wanderkit/store"
)

// Engine 是推荐引擎的对外门面（Façade）。
//
// 外部调用方只使用四个操作：
//   - Initialize: 加载画像、构建特征索引、组装 Pipeline
//   - GetRecommendations: 产出排好序、过滤过、多样化的推荐列表
//   - RecordInteraction / RateExperience: 记录交互，在线更新画像
//
// 所有状态都挂在实例上（特征索引、画像表、Pipeline、回退列表），
// 一个进程/一个测试一个实例，不依赖任何全局可变状态。
type Engine struct {
	catalog      core.Catalog
	profileStore core.ProfileStore // 可为 nil：纯内存运行
	board        *store.PopularityBoard
	cfg          Config
	logger       *zap.Logger

	mu          sync.Mutex
	initialized bool

	table     *profile.Table
	log       *profile.InteractionLog
	recorder  *profile.Recorder
	persister *profile.Persister
	index     *feature.Index
	pipe      *pipeline.Pipeline
	fallback  []core.Recommendation
}

// Option 配置引擎实例。
type Option func(*Engine)

// WithConfig 覆盖默认配置。
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		cfg.normalize()
		e.cfg = cfg
	}
}

// WithPopularityBoard 挂接热度榜：初始化时发布目录全量热度分，
// 回退列表未配置时从榜单取热度 Top 候选。
func WithPopularityBoard(board *store.PopularityBoard) Option {
	return func(e *Engine) {
		e.board = board
	}
}

// WithLogger 注入日志器，默认 zap.NewNop()。
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New 创建引擎实例。调用 Initialize 之前不可用。
func New(catalog core.Catalog, profileStore core.ProfileStore, opts ...Option) *Engine {
	e := &Engine{
		catalog:      catalog,
		profileStore: profileStore,
		cfg:          DefaultConfig(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// errNotInitialized 表示引擎还没完成初始化。
var errNotInitialized = core.NewDomainError(core.ModuleEngine, core.ErrorCodeUnavailable, "engine: not initialized")

// Initialize 加载画像、构建特征索引并组装 Pipeline。
// 幂等：重复调用直接返回；失败后引擎保持未初始化，可重试。
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}

	index, err := feature.Build(ctx, e.catalog)
	if err != nil {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeUnavailable,
			"engine: catalog unavailable: "+err.Error())
	}

	table := profile.NewTable()
	if e.profileStore != nil {
		profiles, err := e.profileStore.LoadAll(ctx)
		if err != nil {
			return core.NewDomainError(core.ModuleEngine, core.ErrorCodeUnavailable,
				"engine: profile store unavailable: "+err.Error())
		}
		table.Load(profiles)
	}

	e.index = index
	e.table = table
	e.log = profile.NewInteractionLog(e.cfg.InteractionLogSize)

	if e.profileStore != nil {
		e.persister = profile.NewPersister(e.profileStore, e.cfg.PersistQueueSize, e.logger)
	}

	e.recorder = profile.NewRecorder(e.table, e.log, e.persister, e.logger)
	e.recorder.Catalog = e.catalog
	e.recorder.LearningRate = e.cfg.LearningRate
	e.recorder.DecayFactor = e.cfg.DecayFactor

	e.publishPopularity(ctx)

	e.pipe = e.buildPipeline()
	e.fallback = e.buildFallback(ctx)

	e.logger.Info("engine initialized",
		zap.Int("experiences", index.Len()),
		zap.Int("profiles", table.Len()),
		zap.Int("fallback", len(e.fallback)))

	e.initialized = true
	return nil
}

// buildPipeline 组装请求 Pipeline：融合 → 上下文过滤 → 多样性 → 截断。
func (e *Engine) buildPipeline() *pipeline.Pipeline {
	blendNode := &blend.Blend{
		Sources: []blend.WeightedSource{
			{
				Source: &recall.CollaborativeSource{
					Profiles:         e.table,
					TopKSimilarUsers: e.cfg.TopKSimilarUsers,
					MinSimilarity:    e.cfg.MinSimilarity,
					LikedThreshold:   e.cfg.LikedThreshold,
				},
				Weight: e.cfg.Weights.Collaborative,
			},
			{
				Source: &recall.ContentSource{
					Index:         e.index,
					Profiles:      e.table,
					MinSimilarity: e.cfg.MinSimilarity,
				},
				Weight: e.cfg.Weights.Content,
			},
			{
				Source: &recall.PopularitySource{
					Index: e.index,
					TopK:  e.cfg.PopularityTopK,
				},
				Weight: e.cfg.Weights.Popularity,
			},
		},
		Logger: e.logger,
	}

	filters := []filter.Filter{
		&filter.GeoRadiusFilter{Index: e.index},
		&filter.AvailabilityFilter{Index: e.index},
		&filter.BudgetFilter{Index: e.index},
	}
	for _, rule := range e.cfg.FilterRules {
		filters = append(filters, &filter.ExprFilter{Expr: rule})
	}

	seed := e.cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			blendNode,
			&filter.Node{Filters: filters},
			&rerank.Diversity{
				Index:              e.index,
				MaxRecommendations: e.cfg.MaxRecommendations,
				DiversityWeight:    e.cfg.DiversityWeight,
				Rand:               rerank.NewLockedRand(seed),
			},
			&rerank.TopNNode{N: e.cfg.MaxRecommendations},
		},
	}
}

// publishPopularity 把目录全量热度分发布进热度榜（挂接了榜单时）。
// 发布失败只记日志：榜单是回退/观测辅助，不在推荐热路径上。
func (e *Engine) publishPopularity(ctx context.Context) {
	if e.board == nil {
		return
	}
	for _, exp := range e.index.All() {
		if err := e.board.Publish(ctx, exp.ID, exp.Stats.PopularityScore()); err != nil {
			e.logger.Warn("popularity board publish failed",
				zap.String("experience_id", exp.ID),
				zap.Error(err))
		}
	}
}

// buildFallback 构建固定回退列表：优先用配置里人工挑选的 ID，
// 其次查热度榜，最后就地按热度分排序。回退列表在初始化时冻结。
func (e *Engine) buildFallback(ctx context.Context) []core.Recommendation {
	ids := e.cfg.FallbackIDs
	n := e.cfg.MaxRecommendations / 2
	if n <= 0 {
		n = 10
	}

	if len(ids) == 0 && e.board != nil {
		top, err := e.board.Top(ctx, n)
		if err != nil {
			e.logger.Warn("popularity board lookup failed", zap.Error(err))
		} else {
			ids = top
		}
	}

	if len(ids) == 0 {
		type scored struct {
			id    string
			score float64
		}
		all := make([]scored, 0, e.index.Len())
		for _, exp := range e.index.All() {
			all = append(all, scored{id: exp.ID, score: exp.Stats.PopularityScore()})
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].score != all[j].score {
				return all[i].score > all[j].score
			}
			return all[i].id < all[j].id
		})
		for i := 0; i < len(all) && i < n; i++ {
			ids = append(ids, all[i].id)
		}
	}

	out := make([]core.Recommendation, 0, len(ids))
	for _, id := range ids {
		exp, ok := e.index.Get(id)
		if !ok {
			continue
		}
		score := exp.Stats.PopularityScore()
		out = append(out, core.Recommendation{
			ExperienceID: id,
			Score:        score,
			Confidence:   clamp01(score),
			Algorithms:   []string{"fallback"},
			Explanation:  "a traveler favorite to get you started",
		})
	}
	return out
}

// GetRecommendations 产出推荐列表。
//
// 失败语义：初始化缺失之外的一切内部错误都降级为回退列表——
// 推荐是 best-effort 功能，绝不让调用方硬失败。
func (e *Engine) GetRecommendations(ctx context.Context, userID string, rctx *core.RecommendContext) ([]core.Recommendation, error) {
	if !e.isInitialized() {
		return nil, errNotInitialized
	}

	// 不改动调用方传入的上下文：同一个 RecommendContext 可能被并发复用
	if rctx == nil {
		rctx = &core.RecommendContext{}
	} else {
		cp := *rctx
		rctx = &cp
	}
	rctx.UserID = userID

	items, err := e.runPipelineSafe(ctx, rctx)
	if err != nil || len(items) == 0 {
		if err != nil {
			e.logger.Warn("recommendation pipeline degraded to fallback",
				zap.String("user_id", userID),
				zap.Error(err))
		}
		return e.fallbackList(), nil
	}
	return e.toRecommendations(items), nil
}

// runPipelineSafe 执行 Pipeline 并把 panic 转成 error（回退由调用方处理）。
func (e *Engine) runPipelineSafe(ctx context.Context, rctx *core.RecommendContext) (items []*core.Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = core.NewDomainError(core.ModuleEngine, core.ErrorCodeInternalError, "engine: pipeline panic")
		}
	}()
	return e.pipe.Run(ctx, rctx, nil)
}

// RecordInteraction 记录一次交互（fire-and-forget：持久化失败不传播）。
func (e *Engine) RecordInteraction(ctx context.Context, userID, experienceID string, typ core.InteractionType, ictx map[string]any) error {
	if !e.isInitialized() {
		return errNotInitialized
	}
	_, err := e.recorder.Record(ctx, userID, experienceID, typ, ictx)
	return err
}

// RateExperience 记录评分（可带评论），并把评分并入目录热度聚合。
func (e *Engine) RateExperience(ctx context.Context, userID, experienceID string, rating float64, review string) error {
	if !e.isInitialized() {
		return errNotInitialized
	}
	_, err := e.recorder.Rate(ctx, userID, experienceID, rating, review)
	return err
}

// SetExplicitPreferences 写入用户显式偏好（冷启动提示）。
func (e *Engine) SetExplicitPreferences(userID string, prefs core.ExplicitPreferences) error {
	if !e.isInitialized() {
		return errNotInitialized
	}
	e.table.SetExplicit(userID, prefs)
	return nil
}

// Profile 返回用户画像快照（观测/测试用）。
func (e *Engine) Profile(userID string) (*core.UserProfile, bool) {
	if !e.isInitialized() {
		return nil, false
	}
	return e.table.Snapshot(userID)
}

// Close 停止异步落盘并排空队列。
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.persister != nil {
		e.persister.Close()
	}
}

func (e *Engine) isInitialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// fallbackList 返回回退列表的拷贝，避免调用方改动冻结的列表。
func (e *Engine) fallbackList() []core.Recommendation {
	out := make([]core.Recommendation, len(e.fallback))
	copy(out, e.fallback)
	return out
}

// toRecommendations 把 Pipeline 产物转成对外结构：
// 置信度 = clamp(融合分, 0, 1)，贡献算法与解释取自打分来源的标签。
func (e *Engine) toRecommendations(items []*core.Item) []core.Recommendation {
	out := make([]core.Recommendation, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}

		algorithms := dedupSplit(it.GetLabel(recall.LabelScoreSource))
		explanation := firstSegment(it.GetLabel(recall.LabelRationale))
		if explanation == "" {
			explanation = "recommended for you based on your travel profile"
		}

		out = append(out, core.Recommendation{
			ExperienceID: it.ID,
			Score:        it.Score,
			Confidence:   clamp01(it.Score),
			Algorithms:   algorithms,
			Explanation:  explanation,
		})
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// dedupSplit 拆开 MergeLabel 累积出的 'a|b|a' 形式并去重，保持出现顺序。
func dedupSplit(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, "|")
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// firstSegment 取 MergeLabel 累积值的第一段（首个来源给出的理由）。
func firstSegment(v string) string {
	if i := strings.IndexByte(v, '|'); i >= 0 {
		return v[:i]
	}
	return v
}
