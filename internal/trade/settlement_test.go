package trade

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lordjumper/flourish/internal/economy"
)

func seedRecord(t *testing.T, store *economy.MemoryStore, userID string, balance int64, items map[string]int) {
	t.Helper()
	rec := economy.NewUserRecord()
	rec.Balance = balance
	for id, qty := range items {
		rec.AddItem(id, qty, 0)
	}
	require.NoError(t, store.Write(context.Background(), userID, rec))
}

func settlementSession(initiator, counterparty Offer) *Session {
	return &Session{
		ID:                "s1",
		InitiatorID:       "alice",
		CounterpartyID:    "bob",
		InitiatorOffer:    initiator,
		CounterpartyOffer: counterparty,
	}
}

func TestSettlerTransfersItemsAndCurrency(t *testing.T) {
	store := economy.NewMemoryStore()
	clock := newFakeClock()
	seedRecord(t, store, "alice", 500, map[string]int{"shiny_rock": 4})
	seedRecord(t, store, "bob", 200, map[string]int{"brass_key": 1})

	s := settlementSession(
		Offer{Items: map[string]int{"shiny_rock": 3}, Currency: 120},
		Offer{Items: map[string]int{"brass_key": 1}, Currency: 30},
	)

	require.NoError(t, NewSettler(store, clock).Execute(context.Background(), s))

	alice, err := store.Read(context.Background(), "alice")
	require.NoError(t, err)
	bob, err := store.Read(context.Background(), "bob")
	require.NoError(t, err)

	assert.Equal(t, int64(410), alice.Balance)
	assert.Equal(t, int64(290), bob.Balance)
	assert.Equal(t, 1, alice.ItemQuantity("shiny_rock"))
	assert.Equal(t, 1, alice.ItemQuantity("brass_key"))
	assert.Equal(t, 3, bob.ItemQuantity("shiny_rock"))
	assert.Equal(t, 0, bob.ItemQuantity("brass_key"), "fully traded line is removed")
}

func TestSettlerStampsReceivedItems(t *testing.T) {
	store := economy.NewMemoryStore()
	clock := newFakeClock()
	seedRecord(t, store, "alice", 0, map[string]int{"shiny_rock": 1})
	seedRecord(t, store, "bob", 0, nil)

	s := settlementSession(Offer{Items: map[string]int{"shiny_rock": 1}}, newOffer())
	require.NoError(t, NewSettler(store, clock).Execute(context.Background(), s))

	bob, err := store.Read(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, bob.Inventory, 1)
	assert.Equal(t, clock.Now().UnixMilli(), bob.Inventory[0].Acquired)
}

func TestSettlerChecksOfferedNotReceived(t *testing.T) {
	store := economy.NewMemoryStore()
	seedRecord(t, store, "alice", 0, nil)
	seedRecord(t, store, "bob", 100, nil)

	// Alice has no money but offers none; receiving 100 is fine.
	s := settlementSession(newOffer(), Offer{Items: map[string]int{}, Currency: 100})
	require.NoError(t, NewSettler(store, newFakeClock()).Execute(context.Background(), s))

	alice, err := store.Read(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), alice.Balance)
}

func TestSettlerInsufficientFundsMutatesNothing(t *testing.T) {
	store := economy.NewMemoryStore()
	seedRecord(t, store, "alice", 50, map[string]int{"shiny_rock": 2})
	seedRecord(t, store, "bob", 1000, nil)

	s := settlementSession(
		Offer{Items: map[string]int{"shiny_rock": 2}, Currency: 80},
		Offer{Items: map[string]int{}, Currency: 10},
	)

	err := NewSettler(store, newFakeClock()).Execute(context.Background(), s)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	alice, rerr := store.Read(context.Background(), "alice")
	require.NoError(t, rerr)
	bob, rerr := store.Read(context.Background(), "bob")
	require.NoError(t, rerr)
	assert.Equal(t, int64(50), alice.Balance)
	assert.Equal(t, 2, alice.ItemQuantity("shiny_rock"))
	assert.Equal(t, int64(1000), bob.Balance)
}

func TestSettlerInsufficientItemsMutatesNothing(t *testing.T) {
	store := economy.NewMemoryStore()
	seedRecord(t, store, "alice", 100, map[string]int{"shiny_rock": 1})
	seedRecord(t, store, "bob", 100, nil)

	s := settlementSession(
		Offer{Items: map[string]int{"shiny_rock": 2}, Currency: 0},
		Offer{Items: map[string]int{}, Currency: 50},
	)

	err := NewSettler(store, newFakeClock()).Execute(context.Background(), s)
	assert.ErrorIs(t, err, ErrInsufficientItems)

	bob, rerr := store.Read(context.Background(), "bob")
	require.NoError(t, rerr)
	assert.Equal(t, int64(100), bob.Balance)
}

func TestSettlerCatchesConcurrentSpend(t *testing.T) {
	store := economy.NewMemoryStore()
	seedRecord(t, store, "alice", 0, map[string]int{"shiny_rock": 3})
	seedRecord(t, store, "bob", 0, nil)

	s := settlementSession(Offer{Items: map[string]int{"shiny_rock": 3}}, newOffer())

	// The item leaves alice's inventory between offer and settlement.
	rec, err := store.Read(context.Background(), "alice")
	require.NoError(t, err)
	rec.RemoveItem("shiny_rock", 2)
	require.NoError(t, store.Write(context.Background(), "alice", rec))

	err = NewSettler(store, newFakeClock()).Execute(context.Background(), s)
	assert.ErrorIs(t, err, ErrInsufficientItems)
}
