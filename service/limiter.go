package service

import (
	"context"
	"time"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
)

// Limiter 限制同时进行的 CPU 密集任务数量
type Limiter struct {
	semaphore    chan struct{}
	queueTimeout time.Duration
}

func NewLimiter(cfg *config.ProcessingConfig) *Limiter {
	n := cfg.MaxConcurrent
	if n <= 0 {
		n = 1
	}
	return &Limiter{
		semaphore:    make(chan struct{}, n),
		queueTimeout: cfg.QueueTimeout,
	}
}

// Acquire 在排队超时前获取处理槽位，返回的 release 必须调用
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	if l.queueTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.queueTimeout)
		defer cancel()
	}

	select {
	case l.semaphore <- struct{}{}:
		return func() { <-l.semaphore }, nil
	case <-ctx.Done():
		return nil, ErrQueueFull
	}
}
