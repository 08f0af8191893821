package profile

import (
	"sync"

	"github.com/wanderkit/wanderkit/core"
)

// InteractionLog 是有界的交互事件日志（环形缓冲）。
//
// 日志只是辅助历史：用于相似度观测、调试回放，不做持久化，
// 偏好的权威来源始终是画像里衰减后的分数。事件一经追加不可变。
type InteractionLog struct {
	mu     sync.RWMutex
	events []*core.Interaction
	next   int
	full   bool
	cap    int
}

// NewInteractionLog 创建容量为 capacity 的日志；capacity <= 0 时取默认 1000。
func NewInteractionLog(capacity int) *InteractionLog {
	if capacity <= 0 {
		capacity = 1000
	}
	return &InteractionLog{
		events: make([]*core.Interaction, capacity),
		cap:    capacity,
	}
}

// Append 追加一条事件；超出容量时覆盖最旧的事件。
func (l *InteractionLog) Append(ev *core.Interaction) {
	if ev == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[l.next] = ev
	l.next = (l.next + 1) % l.cap
	if l.next == 0 {
		l.full = true
	}
}

// Len 返回当前事件数。
func (l *InteractionLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.full {
		return l.cap
	}
	return l.next
}

// Recent 返回最近 n 条事件，按时间从旧到新。
func (l *InteractionLog) Recent(n int) []*core.Interaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	size := l.next
	if l.full {
		size = l.cap
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]*core.Interaction, 0, n)
	start := l.next - n
	if start < 0 {
		start += l.cap
	}
	for i := 0; i < n; i++ {
		out = append(out, l.events[(start+i)%l.cap])
	}
	return out
}

// ForUser 返回某用户最近的事件（从旧到新），最多 n 条；n <= 0 不限。
func (l *InteractionLog) ForUser(userID string, n int) []*core.Interaction {
	all := l.Recent(0)
	out := make([]*core.Interaction, 0)
	for _, ev := range all {
		if ev != nil && ev.UserID == userID {
			out = append(out, ev)
		}
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
