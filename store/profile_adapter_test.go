package store

import (
	"context"
	"testing"

	"github.com/wanderkit/wanderkit/core"
)

func TestProfileAdapter_SaveLoadRoundTrip(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	a := NewProfileAdapter(ms, "test")

	p1 := core.NewUserProfile("alice")
	p1.Preferences["exp_a"] = 0.7
	p2 := core.NewUserProfile("bob")
	p2.Preferences["exp_b"] = 0.3

	ctx := context.Background()
	if err := a.Save(ctx, p1); err != nil {
		t.Fatalf("Save(alice) error = %v", err)
	}
	if err := a.Save(ctx, p2); err != nil {
		t.Fatalf("Save(bob) error = %v", err)
	}

	// 覆盖写
	p1.Preferences["exp_a"] = 0.9
	if err := a.Save(ctx, p1); err != nil {
		t.Fatalf("Save(alice again) error = %v", err)
	}

	profiles, err := a.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("LoadAll() = %d profiles, want 2", len(profiles))
	}

	byID := make(map[string]*core.UserProfile)
	for _, p := range profiles {
		byID[p.UserID] = p
	}
	if got := byID["alice"].Preferences["exp_a"]; got != 0.9 {
		t.Errorf("alice exp_a = %v, want overwritten 0.9", got)
	}
	if got := byID["bob"].Preferences["exp_b"]; got != 0.3 {
		t.Errorf("bob exp_b = %v, want 0.3", got)
	}
}

func TestProfileAdapter_LoadAllEmpty(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	a := NewProfileAdapter(ms, "test")

	profiles, err := a.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("LoadAll() = %d profiles, want 0", len(profiles))
	}
}

func TestProfileAdapter_SkipsCorruptEntries(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	a := NewProfileAdapter(ms, "test")

	ctx := context.Background()
	if err := a.Save(ctx, core.NewUserProfile("alice")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := a.Save(ctx, core.NewUserProfile("bob")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// 损坏 bob 的记录：LoadAll 跳过它，不拖垮启动
	if err := ms.Set(ctx, "test:user:bob", []byte("{not json")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	profiles, err := a.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(profiles) != 1 || profiles[0].UserID != "alice" {
		t.Errorf("LoadAll() = %v, want only alice", profiles)
	}
}

func TestProfileAdapter_InvalidProfile(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	a := NewProfileAdapter(ms, "test")

	ctx := context.Background()
	if err := a.Save(ctx, nil); !core.IsInvalidInput(err) {
		t.Errorf("Save(nil) error = %v, want INVALID_INPUT", err)
	}
	if err := a.Save(ctx, core.NewUserProfile("")); !core.IsInvalidInput(err) {
		t.Errorf("Save(no id) error = %v, want INVALID_INPUT", err)
	}
}
