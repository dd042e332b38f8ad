package trade

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Tradeability is the slice of the item catalog the engine needs.
type Tradeability interface {
	IsTradeable(itemID string) bool
}

// Outcome is a terminal (or settlement-failure) event reported to both
// parties through the presenter.
type Outcome string

const (
	OutcomeSettled   Outcome = "settled"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeRejected  Outcome = "rejected"
	OutcomeExpired   Outcome = "expired"
)

// Presenter is the UI collaborator. Refresh redraws the negotiation view
// after an offer or readiness change; Notify reports outcomes. The engine
// never renders anything itself.
type Presenter interface {
	Refresh(ctx context.Context, s *Session) error
	Notify(ctx context.Context, s *Session, outcome Outcome, detail string) error
}

// ReadyStatus describes what a readiness toggle led to.
type ReadyStatus int

const (
	// ReadyWaiting means the toggle was applied and the other side has not
	// confirmed yet (or the actor just withdrew their confirmation).
	ReadyWaiting ReadyStatus = iota
	// ReadySettled means both sides were ready and settlement succeeded.
	ReadySettled
	// ReadySettleFailed means settlement was attempted and aborted; both
	// flags were reset and the session remains open.
	ReadySettleFailed
)

// ReadyResult is the outcome of ToggleReady.
type ReadyResult struct {
	Status ReadyStatus
	// Ready is the actor's flag after the toggle.
	Ready bool
	// Reason carries the settlement failure when Status is ReadySettleFailed.
	Reason error
}

// Engine applies negotiation actions to sessions. A single mutex serializes
// every action to completion, including the settlement read-validate-write
// sequence, mirroring the one-event-at-a-time delivery the design assumes.
type Engine struct {
	mu       sync.Mutex
	registry *Registry
	catalog  Tradeability
	settler  *Settler
	ui       Presenter
	log      zerolog.Logger
}

// NewEngine wires the negotiation engine to its collaborators.
func NewEngine(registry *Registry, catalog Tradeability, settler *Settler, ui Presenter, log zerolog.Logger) *Engine {
	return &Engine{
		registry: registry,
		catalog:  catalog,
		settler:  settler,
		ui:       ui,
		log:      log,
	}
}

// Open starts a negotiation between two users. The expiry deadline is armed
// here; it is relative to creation and is not reset by later activity.
func (e *Engine) Open(ctx context.Context, initiatorID, counterpartyID string) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.registry.Create(initiatorID, counterpartyID, e.handleDeadline)
	if err != nil {
		return View{}, err
	}
	e.log.Info().
		Str("session", s.ID).
		Str("initiator", initiatorID).
		Str("counterparty", counterpartyID).
		Msg("trade opened")
	return s.View(), nil
}

// Session returns a copy of a live session. Callers get a copy, never the
// live session: discordgo dispatches each handler on its own goroutine, and
// only serialized engine actions may touch session state.
func (e *Engine) Session(sessionID string) (View, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.registry.Get(sessionID)
	if !ok {
		return View{}, false
	}
	return s.View(), true
}

// SetUIHandle records the presentation layer's reference to the negotiation
// message once it has been posted.
func (e *Engine) SetUIHandle(sessionID, handle string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.registry.Get(sessionID); ok {
		s.UIHandle = handle
	}
}

// ActiveSessions returns a snapshot of all live negotiations.
func (e *Engine) ActiveSessions() []View {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.registry.Snapshot()
}

// AddItem adds quantity of an item to the acting user's offer, accumulating
// with any quantity already offered. Ownership is not checked here; it is
// re-validated against fresh records at settlement.
func (e *Engine) AddItem(ctx context.Context, sessionID, userID, itemID string, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.registry.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	if !s.IsParticipant(userID) {
		return ErrNotParticipant
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !e.catalog.IsTradeable(itemID) {
		return ErrItemNotTradeable
	}

	offer := s.OfferOf(userID)
	offer.Items[itemID] += quantity
	s.resetReady()
	e.refresh(ctx, s)
	return nil
}

// SetCurrency sets the acting user's offered currency. Unlike items, the
// amount replaces any previous offer instead of accumulating.
func (e *Engine) SetCurrency(ctx context.Context, sessionID, userID string, amount int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.registry.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	if !s.IsParticipant(userID) {
		return ErrNotParticipant
	}
	if amount < 0 {
		return ErrInvalidAmount
	}

	s.OfferOf(userID).Currency = amount
	s.resetReady()
	e.refresh(ctx, s)
	return nil
}

// ToggleReady flips the acting user's readiness. When both sides are ready
// the trade settles: success removes the session, failure resets both flags
// and leaves the session open for renegotiation.
func (e *Engine) ToggleReady(ctx context.Context, sessionID, userID string) (ReadyResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.registry.Get(sessionID)
	if !ok {
		return ReadyResult{}, ErrSessionNotFound
	}
	if !s.IsParticipant(userID) {
		return ReadyResult{}, ErrNotParticipant
	}

	if userID == s.InitiatorID {
		s.InitiatorReady = !s.InitiatorReady
	} else {
		s.CounterpartyReady = !s.CounterpartyReady
	}

	if !s.InitiatorReady || !s.CounterpartyReady {
		e.refresh(ctx, s)
		return ReadyResult{Status: ReadyWaiting, Ready: *e.readyFlag(s, userID)}, nil
	}

	if err := e.settler.Execute(ctx, s); err != nil {
		if errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrInsufficientItems) {
			s.resetReady()
			e.notify(ctx, s, OutcomeFailed, err.Error())
			e.log.Warn().Str("session", s.ID).Err(err).Msg("trade settlement rejected")
			return ReadyResult{Status: ReadySettleFailed, Reason: err}, nil
		}
		// Store failure: treat like a settlement failure so the parties can
		// retry, but log it loudly.
		s.resetReady()
		e.notify(ctx, s, OutcomeFailed, "the trade could not be completed")
		e.log.Error().Str("session", s.ID).Err(err).Msg("trade settlement failed")
		return ReadyResult{Status: ReadySettleFailed, Reason: err}, nil
	}

	e.registry.Remove(s.ID)
	e.notify(ctx, s, OutcomeSettled, "")
	e.log.Info().
		Str("session", s.ID).
		Int("initiator_items", len(s.InitiatorOffer.Items)).
		Int64("initiator_currency", s.InitiatorOffer.Currency).
		Int("counterparty_items", len(s.CounterpartyOffer.Items)).
		Int64("counterparty_currency", s.CounterpartyOffer.Currency).
		Msg("trade completed")
	return ReadyResult{Status: ReadySettled, Ready: true}, nil
}

// Cancel ends the trade. Only the initiator may cancel.
func (e *Engine) Cancel(ctx context.Context, sessionID, userID string) error {
	return e.close(ctx, sessionID, userID, OutcomeCancelled)
}

// Reject ends the trade. Only the counterparty may reject.
func (e *Engine) Reject(ctx context.Context, sessionID, userID string) error {
	return e.close(ctx, sessionID, userID, OutcomeRejected)
}

func (e *Engine) close(ctx context.Context, sessionID, userID string, outcome Outcome) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.registry.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	allowed := s.InitiatorID
	if outcome == OutcomeRejected {
		allowed = s.CounterpartyID
	}
	if userID != allowed {
		return ErrForbidden
	}

	e.registry.Remove(s.ID)
	e.notify(ctx, s, outcome, "")
	e.log.Info().Str("session", s.ID).Str("outcome", string(outcome)).Msg("trade closed")
	return nil
}

// handleDeadline runs when a session's expiry timer fires. The registry
// decides whether the session actually expires; a session with any readiness
// is left alone.
func (e *Engine) handleDeadline(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, expired := e.registry.Expire(sessionID)
	if !expired {
		return
	}
	e.notify(context.Background(), s, OutcomeExpired, "")
	e.log.Info().Str("session", s.ID).Msg("trade expired")
}

func (e *Engine) readyFlag(s *Session, userID string) *bool {
	if userID == s.InitiatorID {
		return &s.InitiatorReady
	}
	return &s.CounterpartyReady
}

func (e *Engine) refresh(ctx context.Context, s *Session) {
	if err := e.ui.Refresh(ctx, s); err != nil {
		e.log.Warn().Str("session", s.ID).Err(err).Msg("failed to refresh trade view")
	}
}

func (e *Engine) notify(ctx context.Context, s *Session, outcome Outcome, detail string) {
	if err := e.ui.Notify(ctx, s, outcome, detail); err != nil {
		e.log.Warn().Str("session", s.ID).Err(err).Msg("failed to deliver trade notification")
	}
}
