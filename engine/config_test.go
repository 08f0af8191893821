package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Weights.Collaborative != 0.4 || cfg.Weights.Content != 0.4 || cfg.Weights.Popularity != 0.2 {
		t.Errorf("default weights = %+v, want 0.4/0.4/0.2", cfg.Weights)
	}
	if cfg.LearningRate != 0.1 {
		t.Errorf("LearningRate = %v, want 0.1", cfg.LearningRate)
	}
	if cfg.DecayFactor != 0.95 {
		t.Errorf("DecayFactor = %v, want 0.95", cfg.DecayFactor)
	}
	if cfg.MaxRecommendations != 20 {
		t.Errorf("MaxRecommendations = %v, want 20", cfg.MaxRecommendations)
	}
	if cfg.TopKSimilarUsers != 50 {
		t.Errorf("TopKSimilarUsers = %v, want 50", cfg.TopKSimilarUsers)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	yaml := `
weights:
  collaborative: 0.5
  content: 0.3
  popularity: 0.2
max_recommendations: 10
fallback_ids:
  - exp_1
  - exp_2
filter_rules:
  - 'item.meta.category == "nightlife"'
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Weights.Collaborative != 0.5 {
		t.Errorf("Weights.Collaborative = %v, want 0.5", cfg.Weights.Collaborative)
	}
	if cfg.MaxRecommendations != 10 {
		t.Errorf("MaxRecommendations = %v, want 10", cfg.MaxRecommendations)
	}
	// 未出现的字段保持默认值
	if cfg.LearningRate != 0.1 {
		t.Errorf("LearningRate = %v, want default 0.1", cfg.LearningRate)
	}
	if len(cfg.FallbackIDs) != 2 {
		t.Errorf("FallbackIDs = %v, want 2 entries", cfg.FallbackIDs)
	}
	if len(cfg.FilterRules) != 1 {
		t.Errorf("FilterRules = %v, want 1 entry", cfg.FilterRules)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/engine.yaml"); err == nil {
		t.Error("LoadConfig() on missing file should fail")
	}
}

func TestConfig_Normalize(t *testing.T) {
	cfg := Config{DecayFactor: 1.5, DiversityWeight: -1}
	cfg.normalize()

	if cfg.DecayFactor != 0.95 {
		t.Errorf("DecayFactor = %v, want default 0.95", cfg.DecayFactor)
	}
	if cfg.DiversityWeight != 0 {
		t.Errorf("DiversityWeight = %v, want clamped 0", cfg.DiversityWeight)
	}
	if cfg.MaxRecommendations != 20 {
		t.Errorf("MaxRecommendations = %v, want default 20", cfg.MaxRecommendations)
	}
}
