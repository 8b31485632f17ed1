package workers

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultCheckInterval = 30 * time.Second
	pingTimeout          = 3 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectivityMonitor tracks whether the remote store is reachable. It starts
// optimistic and flips on every ping result.
type ConnectivityMonitor struct {
	pinger   Pinger
	interval time.Duration
	logger   *zap.Logger

	online atomic.Bool
	done   chan struct{}
}

func NewConnectivityMonitor(pinger Pinger, interval time.Duration, logger *zap.Logger) *ConnectivityMonitor {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &ConnectivityMonitor{
		pinger:   pinger,
		interval: interval,
		logger:   logger.Named("connectivity"),
		done:     make(chan struct{}),
	}
	m.online.Store(true)
	return m
}

func (m *ConnectivityMonitor) Online() bool {
	return m.online.Load()
}

// Check pings once and records the result.
func (m *ConnectivityMonitor) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := m.pinger.Ping(ctx)
	online := err == nil
	if prev := m.online.Swap(online); prev != online {
		if online {
			m.logger.Info("remote store reachable again")
		} else {
			m.logger.Warn("remote store unreachable, working offline", zap.Error(err))
		}
	}
	return online
}

func (m *ConnectivityMonitor) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.Check(ctx)
		for {
			select {
			case <-ticker.C:
				m.Check(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *ConnectivityMonitor) Done() <-chan struct{} {
	return m.done
}
