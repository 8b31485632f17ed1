package workers

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const DefaultSaveDelay = time.Second

var ErrDebouncerStopped = errors.New("save debouncer is stopped")

type SaveFunc func(ctx context.Context) error

// SaveDebouncer coalesces bursts of save requests into a single save that
// fires once no new request arrived for the configured delay.
type SaveDebouncer struct {
	save   SaveFunc
	delay  time.Duration
	logger *zap.Logger

	requests chan struct{}
	flushes  chan chan error
	done     chan struct{}
}

func NewSaveDebouncer(save SaveFunc, delay time.Duration, logger *zap.Logger) *SaveDebouncer {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaveDebouncer{
		save:     save,
		delay:    delay,
		logger:   logger.Named("saver"),
		requests: make(chan struct{}, 1),
		flushes:  make(chan chan error),
		done:     make(chan struct{}),
	}
}

func (d *SaveDebouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// Done is closed once the background goroutine has exited.
func (d *SaveDebouncer) Done() <-chan struct{} {
	return d.done
}

// Schedule requests a save. It never blocks.
func (d *SaveDebouncer) Schedule() {
	select {
	case d.requests <- struct{}{}:
	default:
	}
}

// Flush runs the pending save, if any, and returns its error.
func (d *SaveDebouncer) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case d.flushes <- reply:
	case <-d.done:
		return ErrDebouncerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *SaveDebouncer) run(ctx context.Context) {
	defer close(d.done)
	d.logger.Debug("save debouncer started", zap.Duration("delay", d.delay))

	timer := time.NewTimer(d.delay)
	timer.Stop()
	defer timer.Stop()

	pending := false
	for {
		select {
		case <-d.requests:
			pending = true
			timer.Reset(d.delay)

		case <-timer.C:
			pending = false
			d.runSave(ctx)

		case reply := <-d.flushes:
			select {
			case <-d.requests:
				pending = true
			default:
			}
			if !pending {
				reply <- nil
				continue
			}
			timer.Stop()
			pending = false
			reply <- d.runSave(ctx)

		case <-ctx.Done():
			if pending {
				// The run context is gone; give the last save its own deadline.
				final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				d.runSave(final)
				cancel()
			}
			d.logger.Debug("save debouncer shutting down")
			return
		}
	}
}

func (d *SaveDebouncer) runSave(ctx context.Context) error {
	err := d.save(ctx)
	if err != nil {
		d.logger.Warn("debounced save failed", zap.Error(err))
	}
	return err
}
