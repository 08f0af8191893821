package catalog

import (
	"context"
	"sync"

	"github.com/wanderkit/wanderkit/core"
)

// MemoryCatalog 是内存实现的体验目录，用于测试/开发/原型。
// AddRating 维护滚动平均评分和评论计数。
type MemoryCatalog struct {
	mu          sync.RWMutex
	experiences map[string]*core.Experience
	order       []string
	ratingCount map[string]int64
}

// NewMemoryCatalog 用给定体验列表构建目录。重复 ID 保留首个。
func NewMemoryCatalog(experiences []*core.Experience) *MemoryCatalog {
	c := &MemoryCatalog{
		experiences: make(map[string]*core.Experience, len(experiences)),
		ratingCount: make(map[string]int64),
	}
	for _, e := range experiences {
		if e == nil || e.ID == "" {
			continue
		}
		if _, dup := c.experiences[e.ID]; dup {
			continue
		}
		c.experiences[e.ID] = e
		c.order = append(c.order, e.ID)
		if e.Stats.ReviewCount > 0 {
			c.ratingCount[e.ID] = e.Stats.ReviewCount
		}
	}
	return c
}

func (c *MemoryCatalog) Name() string { return "memory" }

func (c *MemoryCatalog) AllExperiences(ctx context.Context) ([]*core.Experience, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*core.Experience, 0, len(c.order))
	for _, id := range c.order {
		cp := *c.experiences[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (c *MemoryCatalog) GetExperience(ctx context.Context, id string) (*core.Experience, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.experiences[id]
	if !ok {
		return nil, core.ErrExperienceNotFound
	}
	cp := *e
	return &cp, nil
}

// AddRating 把一次评分并入热度聚合：滚动平均 + 评论计数。
func (c *MemoryCatalog) AddRating(ctx context.Context, id string, rating float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.experiences[id]
	if !ok {
		return core.ErrExperienceNotFound
	}

	n := c.ratingCount[id]
	e.Stats.Rating = (e.Stats.Rating*float64(n) + rating) / float64(n+1)
	c.ratingCount[id] = n + 1
	return nil
}

var _ core.Catalog = (*MemoryCatalog)(nil)
