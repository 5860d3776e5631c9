package infrastructure

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"instadm/internal/interfaces"
)

// Dispatcher delivers notifications in the background. Failures are logged
// and never reach the caller.
type Dispatcher struct {
	notifier interfaces.Notifier
	timeout  time.Duration
	logger   *zap.Logger
	onResult func(ok bool)
	wg       sync.WaitGroup
}

func NewDispatcher(notifier interfaces.Notifier, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if notifier == nil {
		notifier = MultiNotifier{}
	}
	return &Dispatcher{
		notifier: notifier,
		timeout:  timeout,
		logger:   logger,
		onResult: func(bool) {},
	}
}

// OnResult registers a hook called once per delivery attempt.
func (d *Dispatcher) OnResult(fn func(ok bool)) {
	d.onResult = fn
}

// Dispatch sends n on its own goroutine with a bounded timeout.
func (d *Dispatcher) Dispatch(n interfaces.Notification) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.Notify(ctx, n); err != nil {
			d.logger.Warn("notification failed", zap.String("subject", n.Subject), zap.Error(err))
			d.onResult(false)
			return
		}
		d.onResult(true)
	}()
}

// Wait blocks until in-flight notifications finish or ctx expires.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
