package profile

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wanderkit/wanderkit/core"
)

// Persister 是画像的异步持久化队列。
//
// 语义（fire-and-forget + at-least-once）：
//   - Enqueue 不阻塞调用方，推荐请求不等待落盘
//   - 落盘失败重试 MaxRetries 次后记日志放弃；画像仍在内存里，
//     下一次成功的 Save 自然携带最新状态
//   - 队列满时丢弃本次快照并记日志（后续交互会再入队更新的快照）
type Persister struct {
	store core.ProfileStore

	// MaxRetries 单个快照的落盘重试次数，默认 3
	MaxRetries int

	// RetryDelay 重试间隔，默认 100ms
	RetryDelay time.Duration

	logger *zap.Logger

	// mu 统一保护 closed 判定与入队，Close 与 Enqueue 可以并发调用
	mu     sync.Mutex
	closed bool

	queue chan *core.UserProfile
	wg    sync.WaitGroup
}

// NewPersister 创建并启动持久化 worker。queueSize <= 0 时取默认 256。
func NewPersister(store core.ProfileStore, queueSize int, logger *zap.Logger) *Persister {
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Persister{
		store:      store,
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
		logger:     logger.Named("persister"),
		queue:      make(chan *core.UserProfile, queueSize),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Enqueue 把画像快照排入落盘队列，永不阻塞。Close 之后入队是 no-op。
func (p *Persister) Enqueue(snapshot *core.UserProfile) {
	if snapshot == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	select {
	case p.queue <- snapshot:
	default:
		p.logger.Warn("persist queue full, dropping snapshot",
			zap.String("user_id", snapshot.UserID))
	}
}

func (p *Persister) run() {
	defer p.wg.Done()
	for snapshot := range p.queue {
		p.save(snapshot)
	}
}

func (p *Persister) save(snapshot *core.UserProfile) {
	var err error
	attempts := p.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if err = p.store.Save(context.Background(), snapshot); err == nil {
			return
		}
		time.Sleep(p.RetryDelay)
	}
	// 放弃本次快照：内存态不受影响，下次成功的 Save 会带上最新状态
	p.logger.Error("profile persist failed",
		zap.String("user_id", snapshot.UserID),
		zap.String("store", p.store.Name()),
		zap.Error(err))
}

// Close 停止接收新快照并等待队列排空。可重复调用。
func (p *Persister) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
