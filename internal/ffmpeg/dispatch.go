package ffmpeg

import (
	"log/slog"
	"sync"

	"esdemedia/internal/logging"
)

// ProgressObserver receives progress updates. It runs on its own goroutine and may
// be slow; updates it cannot keep up with are dropped.
type ProgressObserver func(ProgressUpdate)

const dispatchBuffer = 16

// dispatcher delivers updates to an observer without ever blocking the
// producer. A panicking observer is logged and detached.
type dispatcher struct {
	ch     chan ProgressUpdate
	wg     sync.WaitGroup
	logger *slog.Logger
}

func newDispatcher(observer ProgressObserver, logger *slog.Logger) *dispatcher {
	if observer == nil {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &dispatcher{ch: make(chan ProgressUpdate, dispatchBuffer), logger: logger}
	d.wg.Add(1)
	go d.loop(observer)
	return d
}

func (d *dispatcher) loop(observer ProgressObserver) {
	defer d.wg.Done()
	healthy := true
	for update := range d.ch {
		if !healthy {
			continue
		}
		healthy = d.deliver(observer, update)
	}
}

func (d *dispatcher) deliver(observer ProgressObserver, update ProgressUpdate) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("progress observer panicked; further updates dropped",
				logging.Any("panic", r),
				logging.String(logging.FieldEventType, "progress_observer_panic"),
				logging.String(logging.FieldErrorHint, "report the progress display failure"),
				logging.String(logging.FieldImpact, "encoding continues without progress"),
			)
			ok = false
		}
	}()
	observer(update)
	return true
}

// Send queues an update, dropping it when the buffer is full.
func (d *dispatcher) Send(update ProgressUpdate) {
	if d == nil {
		return
	}
	select {
	case d.ch <- update:
	default:
	}
}

// Close drains the queue and waits for the observer goroutine.
func (d *dispatcher) Close() {
	if d == nil {
		return
	}
	close(d.ch)
	d.wg.Wait()
}
