package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/wanderkit/wanderkit/catalog"
	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/store"
)

func testCatalog() *catalog.MemoryCatalog {
	return catalog.NewMemoryCatalog([]*core.Experience{
		{ID: "ramen", Category: "food", Price: 30, LocationRegion: "tokyo",
			Stats: core.PopularityStats{Views: 1000, Bookings: 80, Rating: 4.6, ReviewCount: 150}},
		{ID: "sushi", Category: "food", Price: 40, LocationRegion: "tokyo",
			Stats: core.PopularityStats{Views: 800, Bookings: 60, Rating: 4.4, ReviewCount: 100}},
		{ID: "opera", Category: "show", Price: 200, LocationRegion: "tokyo",
			Stats: core.PopularityStats{Views: 300, Bookings: 40, Rating: 4.8, ReviewCount: 60}},
		{ID: "hike", Category: "outdoor", Price: 10, LocationRegion: "hakone",
			Stats: core.PopularityStats{Views: 500, Bookings: 30, Rating: 4.2, ReviewCount: 40}},
	})
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RandomSeed = 42
	opts = append([]Option{WithConfig(cfg)}, opts...)
	e := New(testCatalog(), nil, opts...)
	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEngine_NotInitialized(t *testing.T) {
	e := New(testCatalog(), nil)

	if _, err := e.GetRecommendations(context.Background(), "u1", nil); !core.IsUnavailable(err) {
		t.Errorf("GetRecommendations before init error = %v, want UNAVAILABLE", err)
	}
	if err := e.RecordInteraction(context.Background(), "u1", "ramen", core.InteractionView, nil); !core.IsUnavailable(err) {
		t.Errorf("RecordInteraction before init error = %v, want UNAVAILABLE", err)
	}
}

func TestEngine_FreshUserGetsPopularity(t *testing.T) {
	e := newTestEngine(t)

	recs, err := e.GetRecommendations(context.Background(), "fresh", nil)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("fresh user got no recommendations")
	}
	if len(recs) > 20 {
		t.Errorf("got %d recommendations, want <= 20", len(recs))
	}

	for _, r := range recs {
		if len(r.Algorithms) == 0 {
			t.Errorf("recommendation %s missing algorithms", r.ExperienceID)
		}
		for _, alg := range r.Algorithms {
			if alg != "popularity" {
				t.Errorf("fresh user algorithm = %q, want popularity only", alg)
			}
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Errorf("confidence = %v, out of [0,1]", r.Confidence)
		}
		if r.Explanation == "" {
			t.Errorf("recommendation %s missing explanation", r.ExperienceID)
		}
	}

	// 分数降序
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Errorf("recommendations not sorted at %d", i)
		}
	}
}

func TestEngine_InteractionsShapeRecommendations(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// u1 反复跟 food 类体验交互
	for i := 0; i < 5; i++ {
		if err := e.RecordInteraction(ctx, "u1", "ramen", core.InteractionBook, nil); err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
	}

	snap, ok := e.Profile("u1")
	if !ok {
		t.Fatal("profile not created by interactions")
	}
	if snap.Preferences["ramen"] == 0 {
		t.Fatal("interaction did not update preferences")
	}

	recs, err := e.GetRecommendations(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}

	// sushi 与 ramen 同类别同档位同区域，内容打分应把它送进结果
	var foundContent bool
	for _, r := range recs {
		if r.ExperienceID != "sushi" {
			continue
		}
		for _, alg := range r.Algorithms {
			if alg == "content" {
				foundContent = true
			}
		}
	}
	if !foundContent {
		t.Errorf("sushi not recommended via content scoring: %+v", recs)
	}
}

func TestEngine_RateExperience(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if err := e.RateExperience(ctx, "u1", "opera", 5, "stunning"); err != nil {
		t.Fatalf("RateExperience() error = %v", err)
	}
	if err := e.RateExperience(ctx, "u1", "opera", 9, ""); !core.IsInvalidInput(err) {
		t.Errorf("RateExperience(9) error = %v, want INVALID_INPUT", err)
	}

	snap, _ := e.Profile("u1")
	if snap.Preferences["opera"] == 0 {
		t.Error("rating did not update preferences")
	}
}

func TestEngine_FallbackOnEmptyPipeline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RandomSeed = 42
	cfg.FallbackIDs = []string{"hike", "opera"}
	cfg.FilterRules = []string{"true"} // 剔除全部候选

	e := New(testCatalog(), nil, WithConfig(cfg))
	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer e.Close()

	recs, err := e.GetRecommendations(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("fallback = %d recs, want exactly the configured 2", len(recs))
	}
	for i, wantID := range []string{"hike", "opera"} {
		if recs[i].ExperienceID != wantID {
			t.Errorf("fallback[%d] = %s, want %s", i, recs[i].ExperienceID, wantID)
		}
		if len(recs[i].Algorithms) != 1 || recs[i].Algorithms[0] != "fallback" {
			t.Errorf("fallback algorithms = %v, want [fallback]", recs[i].Algorithms)
		}
	}
}

func TestEngine_ContextFilters(t *testing.T) {
	e := newTestEngine(t)

	recs, err := e.GetRecommendations(context.Background(), "fresh", &core.RecommendContext{
		MaxBudget: 50,
	})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	for _, r := range recs {
		if r.ExperienceID == "opera" {
			t.Error("opera (price 200) survived MaxBudget 50")
		}
	}
}

// flakyCatalog 第一次 AllExperiences 失败，之后走真实目录。
type flakyCatalog struct {
	*catalog.MemoryCatalog
	failed bool
}

func (c *flakyCatalog) AllExperiences(ctx context.Context) ([]*core.Experience, error) {
	if !c.failed {
		c.failed = true
		return nil, errors.New("catalog warming up")
	}
	return c.MemoryCatalog.AllExperiences(ctx)
}

func TestEngine_InitializeRetryable(t *testing.T) {
	e := New(&flakyCatalog{MemoryCatalog: testCatalog()}, nil)

	if err := e.Initialize(context.Background()); !core.IsUnavailable(err) {
		t.Fatalf("first Initialize() error = %v, want UNAVAILABLE", err)
	}
	// 失败后可重试
	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}
	defer e.Close()

	if _, err := e.GetRecommendations(context.Background(), "u1", nil); err != nil {
		t.Errorf("GetRecommendations() after retry error = %v", err)
	}
}

func TestEngine_PersistsProfiles(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	ps := store.NewProfileAdapter(ms, "test")

	e := New(testCatalog(), ps)
	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if err := e.RecordInteraction(context.Background(), "u1", "ramen", core.InteractionBook, nil); err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	e.Close() // 排空落盘队列

	profiles, err := ps.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(profiles) != 1 || profiles[0].UserID != "u1" {
		t.Fatalf("persisted profiles = %v, want u1", profiles)
	}
	if profiles[0].Preferences["ramen"] == 0 {
		t.Error("persisted profile missing preference")
	}

	// 新引擎实例从持久化画像恢复
	e2 := New(testCatalog(), ps)
	if err := e2.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer e2.Close()
	snap, ok := e2.Profile("u1")
	if !ok || snap.Preferences["ramen"] == 0 {
		t.Error("restarted engine did not restore the profile")
	}
}

func TestEngine_RequestContextNotMutated(t *testing.T) {
	e := newTestEngine(t)

	rctx := &core.RecommendContext{Region: "tokyo", MaxBudget: 100}
	if _, err := e.GetRecommendations(context.Background(), "u1", rctx); err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}

	// 调用方的上下文可以跨请求复用，引擎不得回写
	if rctx.UserID != "" {
		t.Errorf("caller context mutated: UserID = %q", rctx.UserID)
	}
}

func TestEngine_PopularityBoard(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	board := store.NewPopularityBoard(ms, "")

	cfg := DefaultConfig()
	cfg.RandomSeed = 42
	cfg.FilterRules = []string{"true"} // 清空 Pipeline 产出，走回退列表

	e := New(testCatalog(), nil, WithConfig(cfg), WithPopularityBoard(board))
	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer e.Close()

	// 初始化把目录热度分发布进榜单
	score, err := board.Score(context.Background(), "ramen")
	if err != nil {
		t.Fatalf("Score(ramen) error = %v", err)
	}
	want := 0.1*1000 + 0.4*80 + 0.3*4.6 + 0.2*150
	if score != want {
		t.Errorf("board score = %v, want %v", score, want)
	}

	// 未配置 FallbackIDs 时回退列表来自榜单的热度排名
	recs, err := e.GetRecommendations(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	wantOrder := []string{"ramen", "sushi", "hike", "opera"}
	if len(recs) != len(wantOrder) {
		t.Fatalf("fallback = %d recs, want %d", len(recs), len(wantOrder))
	}
	for i, id := range wantOrder {
		if recs[i].ExperienceID != id {
			t.Errorf("fallback[%d] = %s, want %s", i, recs[i].ExperienceID, id)
		}
	}
}

func TestEngine_SetExplicitPreferences(t *testing.T) {
	e := newTestEngine(t)

	if err := e.SetExplicitPreferences("fresh", core.ExplicitPreferences{
		Categories: []string{"outdoor"},
	}); err != nil {
		t.Fatalf("SetExplicitPreferences() error = %v", err)
	}

	recs, err := e.GetRecommendations(context.Background(), "fresh", nil)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}

	// 显式偏好让内容打分参与冷启动
	var hikeViaContent bool
	for _, r := range recs {
		if r.ExperienceID != "hike" {
			continue
		}
		for _, alg := range r.Algorithms {
			if alg == "content" {
				hikeViaContent = true
			}
		}
	}
	if !hikeViaContent {
		t.Errorf("hike not recommended via explicit cold-start: %+v", recs)
	}
}
