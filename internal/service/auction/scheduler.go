package auction

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scheduler owns the expiration timers: one scheduled resolution per
// request currently in bidding. It is an explicit component passed by
// handle, not process-global state; on restart no handles survive and
// the recovery sweep re-derives overdue requests from the store.
type Scheduler struct {
	mu       sync.Mutex
	timers   map[uuid.UUID]*timerEntry
	resolver Resolver
	logger   *slog.Logger

	// resolveTimeout bounds the store work done inside a timer fire.
	resolveTimeout time.Duration
}

// timerEntry identifies one armed handle. A fire releases the map slot
// only while its own entry still occupies it, so a reschedule that
// lands during an in-flight fire keeps its fresh timer.
type timerEntry struct {
	timer *time.Timer
}

// NewScheduler creates an empty scheduler. Bind must be called before
// the first timer fires.
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		timers:         make(map[uuid.UUID]*timerEntry),
		logger:         logger,
		resolveTimeout: time.Minute,
	}
}

// Bind attaches the resolver invoked on expiry. Split from the
// constructor because the service and scheduler reference each other.
func (s *Scheduler) Bind(r Resolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver = r
}

// Schedule arms a one-shot resolution for the request, replacing any
// prior handle for the same id.
func (s *Scheduler) Schedule(requestID uuid.UUID, d time.Duration) {
	if d < 0 {
		d = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.timers[requestID]; ok {
		prior.timer.Stop()
	}
	e := &timerEntry{}
	e.timer = time.AfterFunc(d, func() {
		s.fire(requestID, e)
	})
	s.timers[requestID] = e
}

// Cancel stops and removes the handle if present. Safe to call when the
// timer already fired or never existed.
func (s *Scheduler) Cancel(requestID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.timers[requestID]; ok {
		e.timer.Stop()
		delete(s.timers, requestID)
	}
}

// Stop cancels every pending timer. For shutdown; fired-but-unresolved
// requests are the sweep's problem afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, id)
	}
}

// Len reports the number of armed timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) fire(requestID uuid.UUID, e *timerEntry) {
	// The handle is released whatever happens below; a failed
	// resolution must not leave a dangling entry or block other
	// requests' timers.
	defer s.release(requestID, e)

	s.mu.Lock()
	resolver := s.resolver
	s.mu.Unlock()
	if resolver == nil {
		s.logger.Error("timer fired with no resolver bound", "request_id", requestID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.resolveTimeout)
	defer cancel()

	if err := resolver.ResolveAuction(ctx, requestID); err != nil {
		// Deliberately degraded: the request stays bidding and the
		// recovery sweep retries on a later pass.
		s.logger.Error("auction resolution failed",
			"request_id", requestID, "error", err)
	}
}

func (s *Scheduler) release(requestID uuid.UUID, e *timerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Release only our own handle: a Schedule that replaced the entry
	// mid-fire keeps its armed timer cancellable.
	if s.timers[requestID] == e {
		delete(s.timers, requestID)
	}
}
