// Package trade implements the peer-to-peer trading core: session registry,
// negotiation state machine, settlement, and the correlation-id protocol that
// ties Discord UI controls back to sessions.
package trade

import "time"

// Offer is one side of a negotiation: item quantities keyed by item id plus
// an amount of currency. Quantities are always positive; a zero quantity is
// removed rather than stored.
type Offer struct {
	Items    map[string]int `json:"items"`
	Currency int64          `json:"currency"`
}

func newOffer() Offer {
	return Offer{Items: make(map[string]int)}
}

func (o Offer) clone() Offer {
	out := Offer{Items: make(map[string]int, len(o.Items)), Currency: o.Currency}
	for id, qty := range o.Items {
		out.Items[id] = qty
	}
	return out
}

// Session is one active negotiation between two users. A session is live
// exactly while it is present in the registry; settlement, cancellation,
// rejection, and expiry all remove it.
type Session struct {
	ID             string
	InitiatorID    string
	CounterpartyID string

	InitiatorOffer    Offer
	CounterpartyOffer Offer

	InitiatorReady    bool
	CounterpartyReady bool

	CreatedAt time.Time

	// UIHandle is an opaque reference to the displayed negotiation message,
	// owned by the presentation layer.
	UIHandle string
}

// IsParticipant reports whether the user is one of the two parties.
func (s *Session) IsParticipant(userID string) bool {
	return userID == s.InitiatorID || userID == s.CounterpartyID
}

// OfferOf returns the offer belonging to the given participant.
func (s *Session) OfferOf(userID string) *Offer {
	if userID == s.InitiatorID {
		return &s.InitiatorOffer
	}
	return &s.CounterpartyOffer
}

// resetReady clears both readiness flags. Any change to either offer calls
// this: a changed offer requires re-confirmation from both sides.
func (s *Session) resetReady() {
	s.InitiatorReady = false
	s.CounterpartyReady = false
}

// View is a read-only copy of a session for inspection surfaces.
type View struct {
	ID                string    `json:"id"`
	InitiatorID       string    `json:"initiator_id"`
	CounterpartyID    string    `json:"counterparty_id"`
	InitiatorOffer    Offer     `json:"initiator_offer"`
	CounterpartyOffer Offer     `json:"counterparty_offer"`
	InitiatorReady    bool      `json:"initiator_ready"`
	CounterpartyReady bool      `json:"counterparty_ready"`
	CreatedAt         time.Time `json:"created_at"`
}

// IsParticipant reports whether the user is one of the two parties.
func (v View) IsParticipant(userID string) bool {
	return userID == v.InitiatorID || userID == v.CounterpartyID
}

// View returns a read-only copy of the session. Code outside the engine's
// mutex works with copies; the live session is only touched by serialized
// engine actions.
func (s *Session) View() View {
	return View{
		ID:                s.ID,
		InitiatorID:       s.InitiatorID,
		CounterpartyID:    s.CounterpartyID,
		InitiatorOffer:    s.InitiatorOffer.clone(),
		CounterpartyOffer: s.CounterpartyOffer.clone(),
		InitiatorReady:    s.InitiatorReady,
		CounterpartyReady: s.CounterpartyReady,
		CreatedAt:         s.CreatedAt,
	}
}
