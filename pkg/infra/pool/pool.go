// Package pool provides a bounded goroutine pool on top of ants.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/pflag"
)

// Config defines the configuration for the worker pool.
type Config struct {
	// Capacity 池容量（最大并发 goroutine 数）
	Capacity int `json:"capacity" mapstructure:"capacity"`
	// ExpiryDuration goroutine 空闲过期时间
	ExpiryDuration time.Duration `json:"expiry-duration" mapstructure:"expiry-duration"`
	// PreAlloc 是否预分配内存
	PreAlloc bool `json:"pre-alloc" mapstructure:"pre-alloc"`
	// Nonblocking 提交任务是否非阻塞（若池满则返回错误）
	Nonblocking bool `json:"nonblocking" mapstructure:"nonblocking"`
	// MaxBlockingTasks 当 Nonblocking=false 时，最大等待任务数（0 表示无限制）
	MaxBlockingTasks int `json:"max-blocking-tasks" mapstructure:"max-blocking-tasks"`
	// PanicHandler 恐慌处理函数
	PanicHandler func(interface{}) `json:"-" mapstructure:"-"`
}

// DefaultPoolConfig 返回默认池配置
func DefaultPoolConfig() *Config {
	return &Config{
		Capacity:         64,
		ExpiryDuration:   10 * time.Second,
		PreAlloc:         false,
		Nonblocking:      false,
		MaxBlockingTasks: 0,
	}
}

// Validate validates the pool configuration.
func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidPoolConfig, c.Capacity)
	}
	if c.ExpiryDuration <= 0 {
		return fmt.Errorf("%w: expiry-duration must be positive", ErrInvalidPoolConfig)
	}
	return nil
}

// AddFlags adds flags for pool options to the specified FlagSet.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.Capacity, "pool.capacity", c.Capacity, "Maximum concurrent workers for background queries")
	fs.DurationVar(&c.ExpiryDuration, "pool.expiry-duration", c.ExpiryDuration, "Idle worker expiry")
	fs.BoolVar(&c.PreAlloc, "pool.pre-alloc", c.PreAlloc, "Pre-allocate the worker queue")
	fs.BoolVar(&c.Nonblocking, "pool.nonblocking", c.Nonblocking, "Fail submissions instead of waiting when the pool is full")
	fs.IntVar(&c.MaxBlockingTasks, "pool.max-blocking-tasks", c.MaxBlockingTasks, "Maximum waiting submissions (0 means unlimited)")
}

// Pool represents a worker pool.
type Pool struct {
	name     string
	pool     *ants.Pool
	config   *Config
	stats    *poolStatsCounter
	closed   atomic.Bool
	closedMu sync.Mutex
}

// poolStatsCounter 内部统计计数器
type poolStatsCounter struct {
	SubmittedTasks atomic.Int64
	CompletedTasks atomic.Int64
	RejectedTasks  atomic.Int64
	PanicRecovered atomic.Int64
}

// Stats contains statistics about the worker pool.
type Stats struct {
	SubmittedTasks int64 // 已提交任务数
	CompletedTasks int64 // 已完成任务数
	RejectedTasks  int64 // 拒绝任务数
	PanicRecovered int64 // 恢复的 panic 数
}

// NewPool creates a new worker pool with the given configuration.
func NewPool(name string, config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultPoolConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		name:   name,
		config: config,
		stats:  &poolStatsCounter{},
	}

	pool, err := ants.NewPool(config.Capacity, p.antsOptions()...)
	if err != nil {
		return nil, fmt.Errorf("创建 ants 池失败: %w", err)
	}
	p.pool = pool

	logger.Infow("Worker pool created",
		"name", name,
		"capacity", config.Capacity,
		"preAlloc", config.PreAlloc,
	)

	return p, nil
}

func (p *Pool) antsOptions() []ants.Option {
	opts := []ants.Option{
		ants.WithExpiryDuration(p.config.ExpiryDuration),
		ants.WithPreAlloc(p.config.PreAlloc),
		ants.WithNonblocking(p.config.Nonblocking),
		ants.WithMaxBlockingTasks(p.config.MaxBlockingTasks),
	}

	handler := p.config.PanicHandler
	opts = append(opts, ants.WithPanicHandler(func(r interface{}) {
		p.stats.PanicRecovered.Add(1)
		if handler != nil {
			handler(r)
			return
		}
		logger.Errorw("Worker panic recovered", "pool", p.name, "panic", r)
	}))

	return opts
}

// Name 返回池名称
func (p *Pool) Name() string {
	return p.name
}

// Cap 返回池容量
func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Running 返回正在运行的 goroutine 数量
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Submit 提交任务到池中执行
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.stats.SubmittedTasks.Add(1)
	err := p.pool.Submit(func() {
		task()
		p.stats.CompletedTasks.Add(1)
	})
	if err != nil {
		p.stats.RejectedTasks.Add(1)
		if errors.Is(err, ants.ErrPoolOverload) {
			return ErrPoolOverload
		}
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolClosed
		}
		return err
	}
	return nil
}

// SubmitWithContext 提交带上下文的任务，任务开始前上下文已取消则跳过
func (p *Pool) SubmitWithContext(ctx context.Context, task func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.Submit(func() {
		if ctx.Err() != nil {
			return
		}
		task()
	})
}

// Release 关闭池并释放资源
func (p *Pool) Release() {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()

	if p.closed.Load() {
		return
	}

	p.closed.Store(true)
	p.pool.Release()
	logger.Infow("Worker pool released", "name", p.name)
}

// ReleaseTimeout 带超时关闭池，等待运行中的任务完成；timeout 非正数时等同 Release
func (p *Pool) ReleaseTimeout(timeout time.Duration) error {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()

	if p.closed.Load() {
		return nil
	}

	p.closed.Store(true)
	if timeout <= 0 {
		p.pool.Release()
		logger.Infow("Worker pool released", "name", p.name)
		return nil
	}
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		return err
	}
	logger.Infow("Worker pool drained", "name", p.name)
	return nil
}

// Stats 返回池统计信息快照
func (p *Pool) Stats() Stats {
	return Stats{
		SubmittedTasks: p.stats.SubmittedTasks.Load(),
		CompletedTasks: p.stats.CompletedTasks.Load(),
		RejectedTasks:  p.stats.RejectedTasks.Load(),
		PanicRecovered: p.stats.PanicRecovered.Load(),
	}
}
