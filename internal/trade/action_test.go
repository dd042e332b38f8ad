package trade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionCustomIDRoundTrip(t *testing.T) {
	cases := []Action{
		{Kind: KindAddItems, SessionID: "s1", UserID: "u1"},
		{Kind: KindAddCurrency, SessionID: "s1", UserID: "u1"},
		{Kind: KindSelectItem, SessionID: "s1", UserID: "u1"},
		{Kind: KindPresetCurrency, SessionID: "s1", UserID: "u1", Extra: "500"},
		{Kind: KindCurrencyModal, SessionID: "s1", UserID: "u1"},
		{Kind: KindQuantitySubmit, SessionID: "s1", UserID: "u1", Extra: "shiny_rock"},
		{Kind: KindCurrencySubmit, SessionID: "s1", UserID: "u1"},
		{Kind: KindReady, SessionID: "s1", UserID: "u1"},
		{Kind: KindCancel, SessionID: "s1", UserID: "u1"},
		{Kind: KindReject, SessionID: "s1", UserID: "u1"},
		{Kind: KindReady, SessionID: "s1"},
	}
	for _, want := range cases {
		got, ok := ParseCustomID(want.CustomID())
		require.True(t, ok, "custom id %q", want.CustomID())
		assert.Equal(t, want, got)
	}
}

func TestActionCustomIDEncoding(t *testing.T) {
	a := Action{Kind: KindQuantitySubmit, SessionID: "abc", UserID: "u9", Extra: "old_map"}
	assert.Equal(t, "trade:quantity:abc:u9:old_map", a.CustomID())

	// Extra is dropped without a user id to pin it to.
	a = Action{Kind: KindReady, SessionID: "abc", Extra: "stray"}
	assert.Equal(t, "trade:ready:abc", a.CustomID())
}

func TestParseCustomIDRejectsForeignAndMalformed(t *testing.T) {
	cases := []string{
		"",
		"trade",
		"trade:ready",
		"trade::s1",
		"trade:ready:",
		"trade:not_a_kind:s1",
		"fishing:cast:s1",
		"trade:ready:s1:u1:extra:more",
	}
	for _, id := range cases {
		_, ok := ParseCustomID(id)
		assert.False(t, ok, "custom id %q", id)
	}
}
