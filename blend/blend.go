package blend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/pipeline"
	"github.com/wanderkit/wanderkit/recall"
)

// WeightedSource 把一个打分来源和它的融合权重绑定在一起。
// 权重是相对乘数，不要求归一化成概率分布——融合分只用于相对排序。
type WeightedSource struct {
	Source recall.Source
	Weight float64
}

// Blend 是融合 Node：并发执行所有打分来源，按权重加权合并成一个候选列表。
//
// 合并规则：combined[exp] = Σ(weight_i * score_i[exp])，同一体验出现在
// 多个来源时累加各自的加权贡献，Labels 按标准 Merge 规则累积。
//
// 失败语义（fail-soft）：单个来源出错或 panic 时贡献空列表并记日志，
// 绝不中断整个请求；全部失败时返回空列表，由上层回退处理。
type Blend struct {
	Sources []WeightedSource

	// Timeout 是每个打分来源的超时时间，0 表示不限制
	Timeout time.Duration

	Logger *zap.Logger
}

func (n *Blend) Name() string        { return "blend" }
func (n *Blend) Kind() pipeline.Kind { return pipeline.KindScore }

func (n *Blend) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	logger := n.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	type contribution struct {
		weight float64
		items  []*core.Item
	}

	// 贡献按来源声明位置落槽：合并顺序与 Sources 顺序一致，
	// Labels 的累积结果（解释、贡献算法）不随 goroutine 完成顺序抖动
	contributions := make([]contribution, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)

	for i, ws := range n.Sources {
		i, ws := i, ws
		eg.Go(func() error {
			scoreCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				scoreCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := n.scoreSafe(scoreCtx, ws.Source, rctx)
			if err != nil {
				// 单来源失败降级为空贡献，不中断其他来源
				logger.Warn("score source degraded to empty",
					zap.String("source", ws.Source.Name()),
					zap.Error(err))
				return nil
			}
			contributions[i] = contribution{weight: ws.Weight, items: items}
			return nil
		})
	}
	_ = eg.Wait() // 来源错误已在各自 goroutine 内消化

	// 按权重加权合并
	merged := make(map[string]*core.Item)
	for _, c := range contributions {
		for _, it := range c.items {
			if it == nil {
				continue
			}
			acc, ok := merged[it.ID]
			if !ok {
				acc = core.NewItem(it.ID)
				merged[it.ID] = acc
			}
			acc.Score += c.weight * it.Score
			for k, v := range it.Meta {
				acc.Meta[k] = v
			}
			for k, v := range it.Labels {
				acc.PutLabel(k, v)
			}
		}
	}

	out := make([]*core.Item, 0, len(merged))
	for _, it := range merged {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// scoreSafe 把来源内部的 panic 转成 error，保证 fail-soft。
func (n *Blend) scoreSafe(
	ctx context.Context,
	src recall.Source,
	rctx *core.RecommendContext,
) (items []*core.Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("score source panic: %v", r)
		}
	}()
	return src.Score(ctx, rctx)
}
