package core

import (
	"math"
	"testing"
)

func TestUserProfile_ApplyInteraction(t *testing.T) {
	p := NewUserProfile("u1")

	p.ApplyInteraction("exp_a", InteractionView, 0.1, 0.95)
	if got := p.Preferences["exp_a"]; math.Abs(got-0.01) > 1e-9 {
		t.Errorf("after view: exp_a = %v, want 0.01", got)
	}

	// 再次交互：旧目标衰减，新目标加分
	p.ApplyInteraction("exp_b", InteractionBook, 0.1, 0.95)
	if got := p.Preferences["exp_a"]; math.Abs(got-0.01*0.95) > 1e-9 {
		t.Errorf("after book on exp_b: exp_a = %v, want %v", got, 0.01*0.95)
	}
	if got := p.Preferences["exp_b"]; math.Abs(got-0.08) > 1e-9 {
		t.Errorf("exp_b = %v, want 0.08", got)
	}

	if p.InteractionCount != 2 {
		t.Errorf("InteractionCount = %d, want 2", p.InteractionCount)
	}
	if p.LastActive.IsZero() {
		t.Error("LastActive not updated")
	}
}

func TestUserProfile_ApplyInteraction_Clamp(t *testing.T) {
	p := NewUserProfile("u1")

	// 反复 book 把分数推到封顶
	for i := 0; i < 100; i++ {
		p.ApplyInteraction("exp_a", InteractionBook, 0.5, 0.95)
	}
	if got := p.Preferences["exp_a"]; got != 1 {
		t.Errorf("score = %v, want clamp at 1", got)
	}

	// 所有分数始终落在 [0,1]
	p.ApplyInteraction("exp_b", InteractionLike, 0.1, 0.95)
	for id, score := range p.Preferences {
		if score < 0 || score > 1 {
			t.Errorf("preference %q = %v, out of [0,1]", id, score)
		}
	}
}

func TestUserProfile_ApplyInteraction_TargetNotDecayed(t *testing.T) {
	p := NewUserProfile("u1")
	p.ApplyInteraction("exp_a", InteractionSave, 0.1, 0.95)
	before := p.Preferences["exp_a"]

	// 同一体验再次交互：先不衰减自己，再加分
	p.ApplyInteraction("exp_a", InteractionView, 0.1, 0.95)
	want := before + 0.1*0.1
	if got := p.Preferences["exp_a"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("exp_a = %v, want %v (no self-decay)", got, want)
	}
}

func TestUserProfile_Clone(t *testing.T) {
	p := NewUserProfile("u1")
	p.Preferences["exp_a"] = 0.5
	p.Explicit.Categories = []string{"food"}

	cp := p.Clone()
	cp.Preferences["exp_a"] = 0.9
	cp.Explicit.Categories[0] = "museum"

	if p.Preferences["exp_a"] != 0.5 {
		t.Error("Clone shares Preferences map")
	}
	if p.Explicit.Categories[0] != "food" {
		t.Error("Clone shares Explicit.Categories slice")
	}
}

func TestUserProfile_Liked(t *testing.T) {
	p := NewUserProfile("u1")
	p.Preferences["a"] = 0.4
	p.Preferences["b"] = 0.5
	p.Preferences["c"] = 0.8

	liked := p.Liked(0.5)
	if len(liked) != 1 {
		t.Fatalf("Liked(0.5) = %v, want only c", liked)
	}
	if _, ok := liked["c"]; !ok {
		t.Errorf("Liked(0.5) missing c: %v", liked)
	}
}

func TestInteractionType_Weight(t *testing.T) {
	tests := []struct {
		typ  InteractionType
		want float64
	}{
		{InteractionView, 0.1},
		{InteractionLike, 0.3},
		{InteractionSave, 0.5},
		{InteractionShare, 0.4},
		{InteractionBook, 0.8},
		{InteractionRate, 0.6},
		{InteractionReview, 0.7},
		{InteractionType("unknown"), 0},
	}
	for _, tt := range tests {
		if got := tt.typ.Weight(); got != tt.want {
			t.Errorf("Weight(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestInteractionType_Valid(t *testing.T) {
	if !InteractionBook.Valid() {
		t.Error("book should be valid")
	}
	if InteractionType("teleport").Valid() {
		t.Error("unknown type should be invalid")
	}
}
