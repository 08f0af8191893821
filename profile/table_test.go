package profile

import (
	"sync"
	"testing"

	"github.com/wanderkit/wanderkit/core"
)

func TestTable_UpdateAndSnapshot(t *testing.T) {
	tbl := NewTable()

	tbl.Update("u1", func(p *core.UserProfile) {
		p.ApplyInteraction("exp_a", core.InteractionLike, 0.1, 0.95)
	})

	snap, ok := tbl.Snapshot("u1")
	if !ok {
		t.Fatal("Snapshot(u1) not found after Update")
	}
	if snap.Preferences["exp_a"] == 0 {
		t.Error("interaction not applied")
	}

	// 快照是深拷贝，改动不回写
	snap.Preferences["exp_a"] = 99
	again, _ := tbl.Snapshot("u1")
	if again.Preferences["exp_a"] == 99 {
		t.Error("Snapshot leaked internal state")
	}
}

func TestTable_SnapshotMissing(t *testing.T) {
	tbl := NewTable()
	if _, ok := tbl.Snapshot("ghost"); ok {
		t.Error("Snapshot(ghost) = ok, want miss")
	}
}

func TestTable_Load(t *testing.T) {
	p := core.NewUserProfile("u1")
	p.Preferences["exp_a"] = 0.7

	tbl := NewTable()
	tbl.Load([]*core.UserProfile{p, nil, core.NewUserProfile("")})

	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
	snap, ok := tbl.Snapshot("u1")
	if !ok || snap.Preferences["exp_a"] != 0.7 {
		t.Errorf("loaded profile = %v, want exp_a 0.7", snap)
	}
}

func TestTable_ConcurrentUpdates(t *testing.T) {
	tbl := NewTable()

	// 同一用户并发交互：每次更新原子，总次数不丢
	const workers = 8
	const perWorker = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tbl.Update("u1", func(p *core.UserProfile) {
					p.ApplyInteraction("exp_a", core.InteractionView, 0.1, 0.95)
				})
			}
		}()
	}
	wg.Wait()

	snap, _ := tbl.Snapshot("u1")
	if snap.InteractionCount != workers*perWorker {
		t.Errorf("InteractionCount = %d, want %d", snap.InteractionCount, workers*perWorker)
	}
	for id, score := range snap.Preferences {
		if score < 0 || score > 1 {
			t.Errorf("preference %q = %v, out of [0,1]", id, score)
		}
	}
}

func TestTable_SetExplicit(t *testing.T) {
	tbl := NewTable()
	tbl.SetExplicit("u1", core.ExplicitPreferences{Categories: []string{"food"}})

	snap, ok := tbl.Snapshot("u1")
	if !ok {
		t.Fatal("profile not created by SetExplicit")
	}
	if len(snap.Explicit.Categories) != 1 || snap.Explicit.Categories[0] != "food" {
		t.Errorf("Explicit = %v, want categories [food]", snap.Explicit)
	}
}
