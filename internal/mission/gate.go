package mission

import (
	"log/slog"
	"sync"
	"time"
)

// Gate holds generated plans pending operator confirmation, keyed by
// request id. Each entry resolves exactly once: confirm removes it and
// hands the plan to execution, reject discards it, and any later
// confirm/reject on the same id reports ErrNoSuchPending. The gate owns
// its store; there is no process-wide pending table.
//
// The gate does not serialize execution: callers must ensure only one
// confirmed mission drives the vehicle at a time.
type Gate struct {
	mu      sync.Mutex
	pending map[string]*PendingMission
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// GateOption is a functional option for configuring a Gate.
type GateOption func(*Gate)

// WithGateLogger sets the logger.
func WithGateLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = l
	}
}

// WithPendingTTL makes unresolved entries expire after d. Zero (the
// default) keeps entries until they are resolved.
func WithPendingTTL(d time.Duration) GateOption {
	return func(g *Gate) {
		g.ttl = d
	}
}

// NewGate creates an empty confirmation gate.
func NewGate(opts ...GateOption) *Gate {
	g := &Gate{
		pending: make(map[string]*PendingMission),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Propose stores a generated plan as pending under id. Proposing an id
// that is already pending is an error: the caller must resolve or reject
// the first proposal before reusing its id.
func (g *Gate) Propose(id string, plan *Plan, request string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expireLocked()

	if _, exists := g.pending[id]; exists {
		return &ValidationError{Reason: "mission id already pending confirmation: " + id}
	}

	g.pending[id] = &PendingMission{
		ID:        id,
		Plan:      plan,
		CreatedAt: g.now(),
		Request:   request,
	}

	g.logger.Info("mission proposed, awaiting confirmation",
		"mission_id", id,
		"segments", len(plan.Segments),
	)
	return nil
}

// Confirm resolves a pending entry for execution, removing it. Unknown or
// already-resolved ids report ErrNoSuchPending, so a mission can never be
// confirmed into execution twice.
func (g *Gate) Confirm(id string) (*PendingMission, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expireLocked()

	pm, ok := g.pending[id]
	if !ok {
		return nil, ErrNoSuchPending
	}
	delete(g.pending, id)

	g.logger.Info("mission confirmed", "mission_id", id)
	return pm, nil
}

// Reject discards a pending entry. Unknown or already-resolved ids report
// ErrNoSuchPending.
func (g *Gate) Reject(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expireLocked()

	if _, ok := g.pending[id]; !ok {
		return ErrNoSuchPending
	}
	delete(g.pending, id)

	g.logger.Info("mission rejected", "mission_id", id)
	return nil
}

// Len returns the number of unresolved entries.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expireLocked()
	return len(g.pending)
}

// expireLocked drops entries older than the TTL. Callers hold the mutex.
func (g *Gate) expireLocked() {
	if g.ttl <= 0 {
		return
	}
	cutoff := g.now().Add(-g.ttl)
	for id, pm := range g.pending {
		if pm.CreatedAt.Before(cutoff) {
			delete(g.pending, id)
			g.logger.Warn("pending mission expired without resolution",
				"mission_id", id,
				"age", g.now().Sub(pm.CreatedAt),
			)
		}
	}
}
