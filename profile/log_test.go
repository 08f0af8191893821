package profile

import (
	"fmt"
	"testing"

	"github.com/wanderkit/wanderkit/core"
)

func TestInteractionLog_Bounded(t *testing.T) {
	l := NewInteractionLog(3)

	for i := 0; i < 5; i++ {
		l.Append(core.NewInteraction("u1", fmt.Sprintf("exp_%d", i), core.InteractionView))
	}

	if l.Len() != 3 {
		t.Errorf("Len() = %d, want cap 3", l.Len())
	}

	recent := l.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("Recent(0) = %d events, want 3", len(recent))
	}
	// 最旧的两条被覆盖，剩 exp_2 exp_3 exp_4（从旧到新）
	for i, wantExp := range []string{"exp_2", "exp_3", "exp_4"} {
		if recent[i].ExperienceID != wantExp {
			t.Errorf("recent[%d] = %s, want %s", i, recent[i].ExperienceID, wantExp)
		}
	}
}

func TestInteractionLog_ForUser(t *testing.T) {
	l := NewInteractionLog(10)
	l.Append(core.NewInteraction("alice", "a", core.InteractionView))
	l.Append(core.NewInteraction("bob", "b", core.InteractionLike))
	l.Append(core.NewInteraction("alice", "c", core.InteractionBook))

	events := l.ForUser("alice", 0)
	if len(events) != 2 {
		t.Fatalf("ForUser(alice) = %d events, want 2", len(events))
	}
	if events[0].ExperienceID != "a" || events[1].ExperienceID != "c" {
		t.Errorf("ForUser order = [%s %s], want [a c]", events[0].ExperienceID, events[1].ExperienceID)
	}

	limited := l.ForUser("alice", 1)
	if len(limited) != 1 || limited[0].ExperienceID != "c" {
		t.Errorf("ForUser(alice, 1) = %v, want newest only", limited)
	}
}
