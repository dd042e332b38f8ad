package bot

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lordjumper/flourish/internal/economy"
	"github.com/lordjumper/flourish/internal/shop"
	"github.com/lordjumper/flourish/internal/trade"
)

// silentTransport swallows every REST call the session makes so gateway
// tests never reach the network.
type silentTransport struct{}

func (silentTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusNoContent,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
	}, nil
}

func newGatewayFixture(t *testing.T) (*Bot, *economy.MemoryStore) {
	t.Helper()

	store := economy.NewMemoryStore()
	catalogPath := filepath.Join(t.TempDir(), "shopItems.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(
		`[{"id": "shiny_rock", "name": "Shiny Rock", "price": 50, "category": "collectible"}]`,
	), 0o644))
	catalog, err := shop.Load(catalogPath)
	require.NoError(t, err)

	b, err := New("test-token", store, catalog, zerolog.Nop())
	require.NoError(t, err)
	b.session.Client = &http.Client{Transport: silentTransport{}}

	registry := trade.NewRegistry(trade.SystemClock(), time.Minute)
	settler := trade.NewSettler(store, trade.SystemClock())
	b.SetEngine(trade.NewEngine(registry, catalog, settler, b, zerolog.Nop()))
	return b, store
}

func openSession(t *testing.T, b *Bot) trade.View {
	t.Helper()
	s, err := b.engine.Open(context.Background(), "alice", "bob")
	require.NoError(t, err)
	return s
}

func liveSession(t *testing.T, b *Bot, sessionID string) trade.View {
	t.Helper()
	v, ok := b.engine.Session(sessionID)
	require.True(t, ok)
	return v
}

func componentInteraction(customID, invokerID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: customID},
		User: &discordgo.User{ID: invokerID},
	}}
}

func modalInteraction(customID, invokerID, inputID, value string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionModalSubmit,
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: customID,
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: inputID, Value: value},
				}},
			},
		},
		User: &discordgo.User{ID: invokerID},
	}}
}

func TestHandleComponentIgnoresForeignCustomID(t *testing.T) {
	b, _ := newGatewayFixture(t)

	handled := b.HandleComponent(b.session, componentInteraction("fishing:cast:s1", "alice"))
	assert.False(t, handled, "foreign custom ids are left for other handlers")
}

func TestHandleComponentUnknownSession(t *testing.T) {
	b, _ := newGatewayFixture(t)

	id := trade.Action{Kind: trade.KindReady, SessionID: "long-gone", UserID: "alice"}.CustomID()
	handled := b.HandleComponent(b.session, componentInteraction(id, "alice"))
	assert.True(t, handled, "trade-owned ids are always claimed")
}

func TestHandleComponentRejectsMismatchedIdentity(t *testing.T) {
	b, _ := newGatewayFixture(t)
	s := openSession(t, b)

	// A control pinned to alice, clicked by the other participant.
	pinned := trade.Action{Kind: trade.KindReady, SessionID: s.ID, UserID: "alice"}.CustomID()
	handled := b.HandleComponent(b.session, componentInteraction(pinned, "bob"))
	assert.True(t, handled)

	after := liveSession(t, b, s.ID)
	assert.False(t, after.InitiatorReady, "a mismatched click must not act on either side")
	assert.False(t, after.CounterpartyReady)
}

func TestHandleComponentRejectsNonParticipant(t *testing.T) {
	b, _ := newGatewayFixture(t)
	s := openSession(t, b)

	// Cancel controls carry no pinned user; participation is the only gate.
	unpinned := trade.Action{Kind: trade.KindCancel, SessionID: s.ID}.CustomID()
	handled := b.HandleComponent(b.session, componentInteraction(unpinned, "mallory"))
	assert.True(t, handled)

	_, ok := b.engine.Session(s.ID)
	assert.True(t, ok, "an outsider must not end the trade")
}

func TestHandleComponentReadyToggles(t *testing.T) {
	b, _ := newGatewayFixture(t)
	s := openSession(t, b)

	id := trade.Action{Kind: trade.KindReady, SessionID: s.ID, UserID: "alice"}.CustomID()
	handled := b.HandleComponent(b.session, componentInteraction(id, "alice"))
	assert.True(t, handled)
	assert.True(t, liveSession(t, b, s.ID).InitiatorReady)
}

func TestHandleComponentCancelByInitiator(t *testing.T) {
	b, _ := newGatewayFixture(t)
	s := openSession(t, b)

	id := trade.Action{Kind: trade.KindCancel, SessionID: s.ID}.CustomID()
	handled := b.HandleComponent(b.session, componentInteraction(id, "alice"))
	assert.True(t, handled)

	_, ok := b.engine.Session(s.ID)
	assert.False(t, ok)
}

func TestHandleModalIgnoresForeignCustomID(t *testing.T) {
	b, _ := newGatewayFixture(t)

	handled := b.HandleModal(b.session, modalInteraction("fishing:bait:s1", "alice", "amount", "1"))
	assert.False(t, handled)
}

func TestHandleModalUnknownSession(t *testing.T) {
	b, _ := newGatewayFixture(t)

	id := trade.Action{Kind: trade.KindCurrencySubmit, SessionID: "long-gone", UserID: "alice"}.CustomID()
	handled := b.HandleModal(b.session, modalInteraction(id, "alice", "amount", "100"))
	assert.True(t, handled)
}

func TestHandleModalRejectsMismatchedIdentity(t *testing.T) {
	b, store := newGatewayFixture(t)
	s := openSession(t, b)

	rec := economy.NewUserRecord()
	rec.AddItem("shiny_rock", 5, 0)
	require.NoError(t, store.Write(context.Background(), "alice", rec))

	pinned := trade.Action{Kind: trade.KindQuantitySubmit, SessionID: s.ID, UserID: "alice", Extra: "shiny_rock"}.CustomID()
	handled := b.HandleModal(b.session, modalInteraction(pinned, "bob", "quantity", "2"))
	assert.True(t, handled)

	after := liveSession(t, b, s.ID)
	assert.Empty(t, after.InitiatorOffer.Items, "a hijacked modal must not change the pinned user's offer")
	assert.Empty(t, after.CounterpartyOffer.Items)
}

func TestHandleModalQuantitySubmitAddsItem(t *testing.T) {
	b, store := newGatewayFixture(t)
	s := openSession(t, b)

	rec := economy.NewUserRecord()
	rec.AddItem("shiny_rock", 5, 0)
	require.NoError(t, store.Write(context.Background(), "alice", rec))

	id := trade.Action{Kind: trade.KindQuantitySubmit, SessionID: s.ID, UserID: "alice", Extra: "shiny_rock"}.CustomID()
	handled := b.HandleModal(b.session, modalInteraction(id, "alice", "quantity", "2"))
	assert.True(t, handled)
	assert.Equal(t, 2, liveSession(t, b, s.ID).InitiatorOffer.Items["shiny_rock"])
}

func TestHandleModalCurrencySubmitSetsAmount(t *testing.T) {
	b, _ := newGatewayFixture(t)
	s := openSession(t, b)

	id := trade.Action{Kind: trade.KindCurrencySubmit, SessionID: s.ID, UserID: "alice"}.CustomID()
	handled := b.HandleModal(b.session, modalInteraction(id, "alice", "amount", "250"))
	assert.True(t, handled)
	assert.Equal(t, int64(250), liveSession(t, b, s.ID).InitiatorOffer.Currency)
}

func TestUIHandleRoundTrip(t *testing.T) {
	handle := uiHandle("chan123", "msg456")
	assert.Equal(t, "chan123/msg456", handle)

	channelID, messageID, ok := parseUIHandle(handle)
	assert.True(t, ok)
	assert.Equal(t, "chan123", channelID)
	assert.Equal(t, "msg456", messageID)
}

func TestParseUIHandleRejectsMalformed(t *testing.T) {
	for _, handle := range []string{"", "nodelimiter", "/msg", "chan/"} {
		_, _, ok := parseUIHandle(handle)
		assert.False(t, ok, "handle %q", handle)
	}
}

func TestTextInputValue(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: "quantity_input", Value: "3"},
				},
			},
		},
	}

	assert.Equal(t, "3", textInputValue(data, "quantity_input"))
	assert.Equal(t, "", textInputValue(data, "missing_input"))
}

func TestErrorMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{trade.ErrSessionNotFound, "This trade is no longer active."},
		{trade.ErrNotParticipant, "You are not part of this trade."},
		{trade.ErrForbidden, "You can't do that in this trade."},
		{trade.ErrInvalidQuantity, "Please enter a valid positive number."},
		{trade.ErrInvalidAmount, "Please enter a valid amount."},
		{trade.ErrItemNotTradeable, "That item can't be traded."},
		{trade.ErrSelfTrade, "You can't trade with yourself."},
		{trade.ErrAlreadyTrading, "One or both users are already in an active trade."},
		{errors.New("boom"), "Something went wrong with the trade."},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, errorMessage(tc.err))
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "💰 1500 coins", formatMoney(1500))
}

func TestReadyLabel(t *testing.T) {
	assert.Equal(t, "✅ Ready", readyLabel(true))
	assert.Equal(t, "⏳ Not Ready", readyLabel(false))
}
