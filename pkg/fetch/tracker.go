// Package fetch guards asynchronous loads so that only the most recent
// request's result is ever applied, whatever order responses arrive in.
package fetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vanderheijden86/aidscope/pkg/debug"
	"github.com/vanderheijden86/aidscope/pkg/metrics"
)

// ErrClosed is returned by Run once the tracker is closed.
var ErrClosed = errors.New("fetch tracker closed")

// Ticket identifies one request.
type Ticket struct {
	Seq uint64
	Ctx context.Context
}

// State is a snapshot of a tracker. Value is nil while nothing has loaded and
// after a failed load.
type State[T any] struct {
	Pending bool
	Value   *T
	Err     error
	Seq     uint64
}

// Tracker holds the latest value of one asynchronous resource. Begin starts a
// request and cancels the one before it; Complete applies a result only if it
// belongs to the newest request.
type Tracker[T any] struct {
	name string
	log  *zap.Logger

	mu      sync.Mutex
	owner   context.Context
	stop    context.CancelFunc
	cancel  context.CancelFunc // current request
	seq     uint64
	pending bool
	value   *T
	err     error
	closed  bool
	started time.Time
}

// NewTracker creates a tracker whose requests live no longer than parent.
func NewTracker[T any](parent context.Context, name string) *Tracker[T] {
	if parent == nil {
		parent = context.Background()
	}
	owner, stop := context.WithCancel(parent)
	return &Tracker[T]{
		name:  name,
		log:   debug.Named("fetch").With(zap.String("resource", name)),
		owner: owner,
		stop:  stop,
	}
}

// Begin starts a new request, cancelling the previous one. ctx further scopes
// the request; it may be nil.
func (t *Tracker[T]) Begin(ctx context.Context) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	t.seq++
	reqCtx, cancel := context.WithCancel(t.owner)
	if ctx != nil {
		stopAfter := context.AfterFunc(ctx, cancel)
		prev := cancel
		cancel = func() {
			stopAfter()
			prev()
		}
	}
	t.cancel = cancel
	t.pending = !t.closed
	t.started = time.Now()
	if t.closed {
		cancel()
	}
	return Ticket{Seq: t.seq, Ctx: reqCtx}
}

// Complete records the result of a request. It returns false, and changes
// nothing, when the ticket has been superseded or the tracker is closed. A
// failed request leaves the value undefined.
func (t *Tracker[T]) Complete(ticket Ticket, value T, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || ticket.Seq != t.seq {
		metrics.StaleResults.Inc()
		t.log.Debug("dropping stale result", zap.Uint64("seq", ticket.Seq), zap.Uint64("current", t.seq))
		return false
	}
	metrics.Fetch.Record(time.Since(t.started))
	t.pending = false
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if err != nil {
		t.value = nil
		t.err = err
		t.log.Warn("fetch failed", zap.Uint64("seq", ticket.Seq), zap.Error(err))
		return true
	}
	v := value
	t.value = &v
	t.err = nil
	return true
}

// Current reports whether ticket is still the newest request.
func (t *Tracker[T]) Current(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed && ticket.Seq == t.seq
}

// State returns a snapshot.
func (t *Tracker[T]) State() State[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State[T]{Pending: t.pending, Value: t.value, Err: t.err, Seq: t.seq}
}

// Invalidate forgets the value and supersedes any in-flight request.
func (t *Tracker[T]) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.seq++
	t.pending = false
	t.value = nil
	t.err = nil
}

// Close cancels every request. Later results are dropped.
func (t *Tracker[T]) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.pending = false
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.stop()
}

// Run begins a request, calls fn with its context and completes it. When
// fn's result is dropped Run returns ErrClosed, or context.Canceled if a
// newer request superseded it.
func (t *Tracker[T]) Run(ctx context.Context, fn func(context.Context) (T, error)) (State[T], error) {
	ticket := t.Begin(ctx)
	v, err := fn(ticket.Ctx)
	if !t.Complete(ticket, v, err) {
		if t.isClosed() {
			return t.State(), ErrClosed
		}
		return t.State(), context.Canceled
	}
	return t.State(), err
}

func (t *Tracker[T]) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
