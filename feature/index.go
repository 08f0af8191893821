package feature

import (
	"context"
	"sort"

	"github.com/wanderkit/wanderkit/core"
)

// Index 是体验特征索引：每个目录体验一条特征向量。
//
// 生命周期：
//   - 初始化时从 Catalog 整体重建（Build）
//   - 打分请求只读，不回写目录
//
// Index 构建后不再变更，多个请求可以无锁并发读。
type Index struct {
	vectors map[string]*core.Experience
	order   []string // 稳定遍历顺序（按 ID 排序），保证打分可复现
}

// Build 从目录整体拉取体验并构建索引。
func Build(ctx context.Context, catalog core.Catalog) (*Index, error) {
	experiences, err := catalog.AllExperiences(ctx)
	if err != nil {
		return nil, err
	}

	ix := &Index{
		vectors: make(map[string]*core.Experience, len(experiences)),
		order:   make([]string, 0, len(experiences)),
	}
	for _, e := range experiences {
		if e == nil || e.ID == "" {
			continue
		}
		if _, dup := ix.vectors[e.ID]; dup {
			continue
		}
		ix.vectors[e.ID] = e
		ix.order = append(ix.order, e.ID)
	}
	sort.Strings(ix.order)
	return ix, nil
}

// Get 按 ID 查询特征向量。
func (ix *Index) Get(id string) (*core.Experience, bool) {
	e, ok := ix.vectors[id]
	return e, ok
}

// All 返回全部特征向量（按 ID 排序）。
func (ix *Index) All() []*core.Experience {
	out := make([]*core.Experience, 0, len(ix.order))
	for _, id := range ix.order {
		out = append(out, ix.vectors[id])
	}
	return out
}

// Len 返回索引内的体验数。
func (ix *Index) Len() int {
	return len(ix.vectors)
}
