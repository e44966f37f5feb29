package debugsink

import (
	"errors"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cardsight/internal/recognition"
)

// ErrQueueFull is returned by Async.Submit when a crop is dropped.
var ErrQueueFull = errors.New("debug sink queue full")

// ErrClosed is returned by Async.Submit after Close.
var ErrClosed = errors.New("debug sink closed")

// DefaultQueueSize is the Async buffer used when none is given.
const DefaultQueueSize = 64

// Async forwards crops to another sink from a single background goroutine.
// Submit never blocks: when the queue is full the crop is dropped.
type Async struct {
	next  recognition.DebugSink
	queue chan recognition.DebugCrop
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	dropped atomic.Int64
	failed  atomic.Int64
}

// NewAsync starts the writer goroutine. A size of zero or less selects
// DefaultQueueSize.
func NewAsync(next recognition.DebugSink, size int) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	a := &Async{next: next, queue: make(chan recognition.DebugCrop, size)}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *Async) run() {
	defer a.wg.Done()
	for crop := range a.queue {
		if err := a.next.Submit(crop); err != nil {
			a.failed.Add(1)
			log.WithError(err).WithField("slot", crop.Slot).Warn("debug sink write failed")
		}
	}
}

// Submit implements recognition.DebugSink.
func (a *Async) Submit(crop recognition.DebugCrop) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- crop:
		return nil
	default:
		a.dropped.Add(1)
		return ErrQueueFull
	}
}

// Dropped returns the number of crops discarded because the queue was full.
func (a *Async) Dropped() int64 {
	return a.dropped.Load()
}

// Failed returns the number of crops the wrapped sink rejected.
func (a *Async) Failed() int64 {
	return a.failed.Load()
}

// Close stops accepting crops and waits until queued crops are written.
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()
	a.wg.Wait()
}

// Multi submits every crop to each sink in order and joins their errors.
type Multi []recognition.DebugSink

// Submit implements recognition.DebugSink.
func (m Multi) Submit(crop recognition.DebugCrop) error {
	var errs []error
	for _, s := range m {
		if err := s.Submit(crop); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
