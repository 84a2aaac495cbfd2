package media

import (
	"context"
	"sync"
	"time"

	"storybook-media-api/pkg/logger"
	"storybook-media-api/pkg/metrics"
)

// Pacer 控制外部生成调用之间的最小间隔
type Pacer interface {
	// Wait 阻塞到允许下一次调用，ctx 取消时返回 ctx.Err()
	Wait(ctx context.Context) error
}

// Clock 可替换的时钟
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock 系统时钟
func RealClock() Clock { return realClock{} }

func sleep(ctx context.Context, clock Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}

// FixedIntervalPacer 进程内固定间隔节流
// 第一次调用立即放行，之后每次放行距上一次放行至少 interval
type FixedIntervalPacer struct {
	interval time.Duration
	clock    Clock

	mu   sync.Mutex
	last time.Time
}

// NewFixedIntervalPacer 创建固定间隔节流器，clock 为 nil 时使用系统时钟
func NewFixedIntervalPacer(interval time.Duration, clock Clock) *FixedIntervalPacer {
	if clock == nil {
		clock = realClock{}
	}
	return &FixedIntervalPacer{interval: interval, clock: clock}
}

// Wait 等待下一个调用时隙
func (p *FixedIntervalPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.last.IsZero() && p.interval > 0 {
		wait := p.last.Add(p.interval).Sub(p.clock.Now())
		if wait > 0 {
			metrics.PacerWaitDuration.Observe(wait.Seconds())
			if err := sleep(ctx, p.clock, wait); err != nil {
				return err
			}
		}
	}
	p.last = p.clock.Now()
	return nil
}

// IntervalAcquirer 跨进程的固定间隔时隙，由 redis.RateLimiter 实现
type IntervalAcquirer interface {
	AcquireInterval(ctx context.Context, key string, interval time.Duration) (time.Duration, error)
}

// RedisPacer 多个实例共享同一个供应商调用节奏
// Redis 不可用时退化为进程内节流
type RedisPacer struct {
	limiter  IntervalAcquirer
	key      string
	interval time.Duration
	clock    Clock
	fallback *FixedIntervalPacer
}

// NewRedisPacer 创建共享节流器
func NewRedisPacer(limiter IntervalAcquirer, key string, interval time.Duration, clock Clock) *RedisPacer {
	if clock == nil {
		clock = realClock{}
	}
	return &RedisPacer{
		limiter:  limiter,
		key:      key,
		interval: interval,
		clock:    clock,
		fallback: NewFixedIntervalPacer(interval, clock),
	}
}

// Wait 抢占共享时隙
func (p *RedisPacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}
	start := p.clock.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		wait, err := p.limiter.AcquireInterval(ctx, p.key, p.interval)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn(ctx, "shared pacer unavailable, using local pacing", "key", p.key, "error", err.Error())
			return p.fallback.Wait(ctx)
		}
		if wait <= 0 {
			if waited := p.clock.Now().Sub(start); waited > 0 {
				metrics.PacerWaitDuration.Observe(waited.Seconds())
			}
			return nil
		}
		if err := sleep(ctx, p.clock, wait); err != nil {
			return err
		}
	}
}
