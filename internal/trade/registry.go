package trade

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a session may sit without mutual readiness
// before it expires. The deadline is fixed at creation, not reset by
// activity.
const DefaultSessionTTL = 60 * time.Second

// Registry owns the lifecycle of active sessions: at most one live session
// per user, and a one-shot expiry deadline scheduled at creation.
type Registry struct {
	mu       sync.Mutex
	clock    Clock
	ttl      time.Duration
	sessions map[string]*Session
	byUser   map[string]string
	timers   map[string]Timer
}

// NewRegistry creates an empty registry. A ttl of zero falls back to
// DefaultSessionTTL.
func NewRegistry(clock Clock, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		clock:    clock,
		ttl:      ttl,
		sessions: make(map[string]*Session),
		byUser:   make(map[string]string),
		timers:   make(map[string]Timer),
	}
}

// Create registers a new session between two distinct, currently idle users
// and schedules its expiry deadline. onDeadline receives the session id when
// the deadline fires; deciding whether the session actually expires is the
// caller's job (see Expire).
func (r *Registry) Create(initiatorID, counterpartyID string, onDeadline func(sessionID string)) (*Session, error) {
	if initiatorID == counterpartyID {
		return nil, ErrSelfTrade
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.byUser[initiatorID]; busy {
		return nil, ErrAlreadyTrading
	}
	if _, busy := r.byUser[counterpartyID]; busy {
		return nil, ErrAlreadyTrading
	}

	s := &Session{
		ID:                uuid.NewString(),
		InitiatorID:       initiatorID,
		CounterpartyID:    counterpartyID,
		InitiatorOffer:    newOffer(),
		CounterpartyOffer: newOffer(),
		CreatedAt:         r.clock.Now(),
	}
	r.sessions[s.ID] = s
	r.byUser[initiatorID] = s.ID
	r.byUser[counterpartyID] = s.ID
	if onDeadline != nil {
		id := s.ID
		r.timers[id] = r.clock.AfterFunc(r.ttl, func() { onDeadline(id) })
	}
	return s, nil
}

// Get returns the live session with the given id.
func (r *Registry) Get(sessionID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	return s, ok
}

// Remove deletes a session and stops its expiry timer. Removing an absent
// session is a no-op.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.remove(sessionID)
}

func (r *Registry) remove(sessionID string) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)
	delete(r.byUser, s.InitiatorID)
	delete(r.byUser, s.CounterpartyID)
	if t, ok := r.timers[sessionID]; ok {
		t.Stop()
		delete(r.timers, sessionID)
	}
}

// Expire removes the session if it is still live and neither party is ready,
// returning it for notification. A session with any readiness is left alone;
// either it is about to settle or a failed settlement already reset the
// flags and the parties are renegotiating.
func (r *Registry) Expire(sessionID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, false
	}
	if s.InitiatorReady || s.CounterpartyReady {
		return nil, false
	}
	r.remove(sessionID)
	return s, true
}

// Snapshot returns read-only copies of every live session.
func (r *Registry) Snapshot() []View {
	r.mu.Lock()
	defer r.mu.Unlock()

	views := make([]View, 0, len(r.sessions))
	for _, s := range r.sessions {
		views = append(views, s.View())
	}
	return views
}
