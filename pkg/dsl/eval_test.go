package dsl

import (
	"testing"

	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/pkg/utils"
)

func TestEval_Evaluate(t *testing.T) {
	item := core.NewItem("exp_1")
	item.Score = 0.75
	item.Meta["category"] = "nightlife"
	item.PutLabel("score_source", utils.Label{Value: "popularity", Source: "score"})

	rctx := &core.RecommendContext{
		UserID:    "u1",
		Region:    "kyoto",
		MaxBudget: 100,
		Params:    map[string]any{"family_trip": true},
	}

	tests := []struct {
		name    string
		expr    string
		want    bool
		wantErr bool
	}{
		{"empty expression is true", "", true, false},
		{"label shortcut", `label.score_source == "popularity"`, true, false},
		{"item score compare", `item.score > 0.7`, true, false},
		{"item score compare false", `item.score > 0.9`, false, false},
		{"meta access", `item.meta.category == "nightlife"`, true, false},
		{"rctx region", `rctx.region == "kyoto"`, true, false},
		{"params access", `rctx.params.family_trip == true`, true, false},
		{"combined rule", `item.meta.category == "nightlife" && rctx.params.family_trip == true`, true, false},
		{"compile error", `item.score >`, false, true},
		{"non-boolean result", `item.score`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEval(item, rctx)
			got, err := ev.Evaluate(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Evaluate(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEval_NilItem(t *testing.T) {
	ev := NewEval(nil, nil)
	got, err := ev.Evaluate(`1 < 2`)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !got {
		t.Error("constant expression should evaluate without item")
	}
}
