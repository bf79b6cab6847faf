package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
	"github.com/moonwavetravel/backend/internal/realtime"
)

// ErrClosed is returned by views that have been closed.
var ErrClosed = errors.New("aggregate: view closed")

// eventRefetchTimeout bounds a refetch triggered by a change event.
const eventRefetchTimeout = 15 * time.Second

// Status is the load state of a view.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusErrored:
		return "errored"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// State is a snapshot of a view. Data is nil until the first successful load
// and keeps its last value when a later load fails. Error holds a translated,
// user-facing message; raw backend errors are never stored.
type State[T any] struct {
	Key      uuid.UUID
	Status   Status
	Data     *T
	Loading  bool
	Error    string
	Category errmsg.Category
	Fields   map[string]string // per-field validation messages of a failed mutation
	Version  uint64            // incremented on every change
}

// live is the shared engine behind every view: one key, its subscriptions,
// and the request bookkeeping that keeps stale responses out.
//
// gen changes whenever the key changes; a response carrying an older gen
// belongs to a previous key and is dropped. Within one gen, seq numbers
// requests and applied is the newest seq whose response was stored, so a
// response older than one already applied is dropped as well.
type live[T any] struct {
	env     Env
	name    string
	fetch   func(ctx context.Context, key uuid.UUID) (T, error)
	filters func(key uuid.UUID) []realtime.Filter

	mu      sync.Mutex
	key     uuid.UUID
	gen     uint64
	seq     uint64
	applied uint64
	state   State[T]
	subs    []*realtime.Subscription
	stop    context.CancelFunc
	closed  bool
	updates chan struct{}
	wg      sync.WaitGroup
}

func newLive[T any](env Env, name string, fetch func(context.Context, uuid.UUID) (T, error), filters func(uuid.UUID) []realtime.Filter) *live[T] {
	return &live[T]{
		env:     env,
		name:    name,
		fetch:   fetch,
		filters: filters,
		updates: make(chan struct{}, 1),
	}
}

// Load points the view at key and fetches it. Subscriptions for the previous
// key are torn down before new ones are opened. An empty key leaves the view
// idle with no data and issues no remote call.
func (l *live[T]) Load(ctx context.Context, key uuid.UUID) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.unsubscribeLocked()
	l.gen++
	l.seq, l.applied = 0, 0
	l.key = key
	l.state = State[T]{Key: key, Status: StatusIdle, Version: l.state.Version}
	if key == uuid.Nil {
		l.changedLocked()
		l.mu.Unlock()
		return nil
	}
	l.subscribeLocked()
	l.mu.Unlock()

	return l.refetch(ctx, 0)
}

// Refetch reloads the current key. It is the single path used by manual
// refreshes, change events and successful mutations.
func (l *live[T]) Refetch(ctx context.Context) error {
	return l.refetch(ctx, 0)
}

// refetch reloads the current key. A non-zero onlyGen skips the reload when
// the key has changed since the caller captured it.
func (l *live[T]) refetch(ctx context.Context, onlyGen uint64) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.key == uuid.Nil || (onlyGen != 0 && onlyGen != l.gen) {
		l.mu.Unlock()
		return nil
	}
	key, gen := l.key, l.gen
	l.seq++
	seq := l.seq
	l.state.Status = StatusLoading
	l.state.Loading = true
	l.changedLocked()
	l.mu.Unlock()

	data, err := l.fetch(ctx, key)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || gen != l.gen || seq <= l.applied {
		l.env.logger().DebugContext(ctx, "discarded stale response",
			"view", l.name, "key", key, "seq", seq)
		if err != nil {
			return fmt.Errorf("aggregate.%s.Refetch: %w", l.name, err)
		}
		return nil
	}
	l.applied = seq

	pending := l.seq > seq
	l.state.Loading = pending
	if err != nil {
		if errors.Is(err, domain.ErrAccessDenied) {
			l.state.Data = nil
		}
		l.recordLocked(ctx, err, errmsg.ContextFetch, l.name+".fetch")
		l.state.Status = StatusErrored
	} else {
		l.state.Data = &data
		l.state.Error = ""
		l.state.Category = ""
		l.state.Fields = nil
		l.state.Status = StatusReady
	}
	if pending {
		l.state.Status = StatusLoading
	}
	l.changedLocked()

	if err != nil {
		return fmt.Errorf("aggregate.%s.Refetch: %w", l.name, err)
	}
	return nil
}

// fail records a failed mutation without touching Data or Status.
func (l *live[T]) fail(ctx context.Context, err error, errCtx errmsg.Context, operation string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.recordLocked(ctx, err, errCtx, operation)
	l.changedLocked()
}

func (l *live[T]) recordLocked(ctx context.Context, err error, errCtx errmsg.Context, operation string) {
	raw := errmsg.From(err)
	l.state.Error = l.env.translate(raw, errCtx)
	l.state.Category = errmsg.Classify(raw)
	l.state.Fields = nil
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		l.state.Fields = make(map[string]string, len(verr.Fields))
		for k, v := range verr.Fields {
			l.state.Fields[k] = v
		}
	}
	l.env.Reporter.Report(ctx, raw, errCtx, operation)
}

// Snapshot returns a copy of the current state.
func (l *live[T]) Snapshot() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Updates signals after every state change. Signals coalesce: a slow reader
// sees at least one signal after the latest change. The channel is closed by Close.
func (l *live[T]) Updates() <-chan struct{} {
	return l.updates
}

// Close tears down subscriptions and stops further state changes. In-flight
// fetches may finish but their results are discarded. Close is idempotent.
func (l *live[T]) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.unsubscribeLocked()
	close(l.updates)
	l.mu.Unlock()

	l.wg.Wait()
}

func (l *live[T]) changedLocked() {
	l.state.Version++
	select {
	case l.updates <- struct{}{}:
	default:
	}
}

func (l *live[T]) subscribeLocked() {
	if l.env.Events == nil || l.filters == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.stop = cancel
	gen := l.gen

	for _, f := range l.filters(l.key) {
		sub, err := l.env.Events.Subscribe(f)
		if err != nil {
			l.env.logger().Warn("live updates unavailable",
				"view", l.name, "filter", f.String(), "error", err)
			continue
		}
		l.subs = append(l.subs, sub)
		l.wg.Add(1)
		go l.pump(ctx, sub, gen)
	}
}

// pump refetches once per burst of events until the subscription closes.
func (l *live[T]) pump(ctx context.Context, sub *realtime.Subscription, gen uint64) {
	defer l.wg.Done()
	for range sub.C {
	drain:
		for {
			select {
			case _, ok := <-sub.C:
				if !ok {
					return
				}
			default:
				break drain
			}
		}
		rctx, cancel := context.WithTimeout(ctx, eventRefetchTimeout)
		if err := l.refetch(rctx, gen); err != nil && !errors.Is(err, ErrClosed) {
			l.env.logger().Debug("event refetch failed", "view", l.name, "error", err)
		}
		cancel()
	}
}

func (l *live[T]) unsubscribeLocked() {
	for _, sub := range l.subs {
		sub.Close()
	}
	l.subs = nil
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
}
