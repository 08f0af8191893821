package profile

import (
	"sync"

	"github.com/wanderkit/wanderkit/core"
)

// Table 是进程内的画像表：userID -> UserProfile。
//
// 并发模型：
//   - 同一用户的更新串行（每个画像一把锁）
//   - 不同用户完全独立，可并发更新
//   - 读侧拿深拷贝快照，打分过程中不持锁
//
// 进程生命周期内 Table 是权威状态；持久化只是重启恢复手段。
type Table struct {
	mu       sync.RWMutex
	profiles map[string]*slot
}

type slot struct {
	mu      sync.Mutex
	profile *core.UserProfile
}

func NewTable() *Table {
	return &Table{profiles: make(map[string]*slot)}
}

// Load 批量装入画像（启动时从 ProfileStore 恢复）。
// 同名画像覆盖；nil 画像跳过。
func (t *Table) Load(profiles []*core.UserProfile) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range profiles {
		if p == nil || p.UserID == "" {
			continue
		}
		if p.Preferences == nil {
			p.Preferences = make(map[string]float64)
		}
		t.profiles[p.UserID] = &slot{profile: p}
	}
}

// getOrCreate 返回用户的槽位，不存在时懒创建。
func (t *Table) getOrCreate(userID string) *slot {
	t.mu.RLock()
	s, ok := t.profiles[userID]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok = t.profiles[userID]; ok {
		return s
	}
	s = &slot{profile: core.NewUserProfile(userID)}
	t.profiles[userID] = s
	return s
}

// Update 对单个用户画像原子地应用 fn。画像不存在时先懒创建。
func (t *Table) Update(userID string, fn func(*core.UserProfile)) {
	s := t.getOrCreate(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.profile)
}

// Snapshot 返回用户画像的深拷贝；画像不存在时返回 (nil, false)。
func (t *Table) Snapshot(userID string) (*core.UserProfile, bool) {
	t.mu.RLock()
	s, ok := t.profiles[userID]
	t.mu.RUnlock()
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone(), true
}

// SnapshotAll 返回全部画像的深拷贝（协同打分遍历候选邻居用）。
func (t *Table) SnapshotAll() []*core.UserProfile {
	t.mu.RLock()
	slots := make([]*slot, 0, len(t.profiles))
	for _, s := range t.profiles {
		slots = append(slots, s)
	}
	t.mu.RUnlock()

	out := make([]*core.UserProfile, 0, len(slots))
	for _, s := range slots {
		s.mu.Lock()
		out = append(out, s.profile.Clone())
		s.mu.Unlock()
	}
	return out
}

// SetExplicit 覆盖用户的显式偏好（冷启动提示）。
func (t *Table) SetExplicit(userID string, prefs core.ExplicitPreferences) {
	t.Update(userID, func(p *core.UserProfile) {
		p.Explicit = prefs
	})
}

// Len 返回画像数。
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.profiles)
}
