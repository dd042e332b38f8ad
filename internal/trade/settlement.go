package trade

import (
	"context"
	"fmt"

	"github.com/lordjumper/flourish/internal/economy"
)

// Settler performs the bilateral transfer for a fully-ready session. It
// always re-reads both records from the store so inventory and balance
// changes made since the offers were composed are caught here, at commit,
// rather than piecemeal during negotiation.
type Settler struct {
	store economy.Store
	clock Clock
}

// NewSettler creates a settlement processor over the given store.
func NewSettler(store economy.Store, clock Clock) *Settler {
	return &Settler{store: store, clock: clock}
}

// Execute validates both offers against fresh records and, only if every
// check passes, applies the item and currency transfers and persists both
// records together. A failed validation mutates nothing.
func (p *Settler) Execute(ctx context.Context, s *Session) error {
	initiator, err := p.store.Read(ctx, s.InitiatorID)
	if err != nil {
		return fmt.Errorf("failed to read initiator record: %w", err)
	}
	counterparty, err := p.store.Read(ctx, s.CounterpartyID)
	if err != nil {
		return fmt.Errorf("failed to read counterparty record: %w", err)
	}

	// Each side must be able to pay what it is offering, not what it receives.
	if initiator.Balance < s.InitiatorOffer.Currency || counterparty.Balance < s.CounterpartyOffer.Currency {
		return ErrInsufficientFunds
	}
	for itemID, qty := range s.InitiatorOffer.Items {
		if initiator.ItemQuantity(itemID) < qty {
			return ErrInsufficientItems
		}
	}
	for itemID, qty := range s.CounterpartyOffer.Items {
		if counterparty.ItemQuantity(itemID) < qty {
			return ErrInsufficientItems
		}
	}

	now := p.clock.Now().UnixMilli()
	for itemID, qty := range s.InitiatorOffer.Items {
		initiator.RemoveItem(itemID, qty)
		counterparty.AddItem(itemID, qty, now)
	}
	for itemID, qty := range s.CounterpartyOffer.Items {
		counterparty.RemoveItem(itemID, qty)
		initiator.AddItem(itemID, qty, now)
	}

	initiator.Balance += s.CounterpartyOffer.Currency - s.InitiatorOffer.Currency
	counterparty.Balance += s.InitiatorOffer.Currency - s.CounterpartyOffer.Currency

	if err := p.store.WritePair(ctx, s.InitiatorID, initiator, s.CounterpartyID, counterparty); err != nil {
		return fmt.Errorf("failed to persist settled records: %w", err)
	}
	return nil
}
