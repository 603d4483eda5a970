// Package cache 进程级验证计划缓存：每个模型类型只扫描一次
package cache

import (
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"katydid-common-validation/pkg/validation/core"
)

// Stats 缓存统计信息
type Stats struct {
	Hits     int64 // 命中次数
	Misses   int64 // 未命中次数
	Builds   int64 // 成功构建次数
	Failures int64 // 构建失败次数
	Size     int   // 已缓存的计划数
}

// cell 单个模型类型的构建单元
// 同一个 key 的并发首次请求在 mu 上排队，只有第一个真正执行构建
type cell struct {
	mu   sync.Mutex
	plan *core.ValidationPlan
}

// PlanCache 验证计划缓存
// 设计原则：
//   - 命中路径无锁（sync.Map）
//   - 每个 key 一把锁，不同模型类型的构建互不阻塞
//   - 构建失败不缓存，下一次请求重新构建
//   - 首次构建胜出，之后不会刷新或失效
type PlanCache struct {
	builder core.PlanBuilder
	logger  *zap.Logger

	plans sync.Map // key: reflect.Type, value: *core.ValidationPlan
	cells sync.Map // key: reflect.Type, value: *cell，构建成功后移除

	hits     atomic.Int64
	misses   atomic.Int64
	builds   atomic.Int64
	failures atomic.Int64
	size     atomic.Int64
}

// Option 缓存选项
type Option func(*PlanCache)

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(c *PlanCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New 创建验证计划缓存
func New(builder core.PlanBuilder, opts ...Option) *PlanCache {
	c := &PlanCache{
		builder: builder,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get 获取模型类型的验证计划，未命中时构建并缓存
func (c *PlanCache) Get(modelType reflect.Type) (*core.ValidationPlan, error) {
	if plan, ok := c.plans.Load(modelType); ok {
		c.hits.Add(1)
		return plan.(*core.ValidationPlan), nil
	}

	actual, _ := c.cells.LoadOrStore(modelType, &cell{})
	entry := actual.(*cell)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// 排队期间可能已被其他 goroutine 构建完成
	if entry.plan != nil {
		c.hits.Add(1)
		return entry.plan, nil
	}
	// 拿到的是构建完成后新建的单元
	if plan, ok := c.plans.Load(modelType); ok {
		c.hits.Add(1)
		return plan.(*core.ValidationPlan), nil
	}

	c.misses.Add(1)
	plan, err := c.builder.Build(modelType)
	if err != nil {
		c.failures.Add(1)
		return nil, err
	}

	entry.plan = plan
	c.plans.Store(modelType, plan)
	// 计划已进入 plans，单元只剩排队中的 goroutine 持有
	c.cells.CompareAndDelete(modelType, entry)
	c.builds.Add(1)
	c.size.Add(1)

	c.logger.Debug("validation plan cached",
		zap.Stringer("model", modelType),
		zap.Int("definitions", plan.Len()))

	return plan, nil
}

// Peek 只查缓存，不触发构建
func (c *PlanCache) Peek(modelType reflect.Type) (*core.ValidationPlan, bool) {
	plan, ok := c.plans.Load(modelType)
	if !ok {
		return nil, false
	}
	return plan.(*core.ValidationPlan), true
}

// Stats 获取统计信息
func (c *PlanCache) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Builds:   c.builds.Load(),
		Failures: c.failures.Load(),
		Size:     int(c.size.Load()),
	}
}
