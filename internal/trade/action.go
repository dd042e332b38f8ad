package trade

import "strings"

// customIDPrefix marks Discord component and modal custom ids owned by the
// trading subsystem.
const customIDPrefix = "trade"

// Kind identifies a negotiation action carried by a UI control.
type Kind string

const (
	// KindAddItems opens the item selection menu.
	KindAddItems Kind = "add_items"
	// KindAddCurrency opens the currency amount picker.
	KindAddCurrency Kind = "add_money"
	// KindSelectItem is the item menu choice; a quantity modal follows.
	KindSelectItem Kind = "select_item"
	// KindPresetCurrency sets the offer to a preset amount held in Extra.
	KindPresetCurrency Kind = "money"
	// KindCurrencyModal opens the custom amount modal.
	KindCurrencyModal Kind = "money_custom"
	// KindQuantitySubmit is the quantity modal submission; Extra is the item id.
	KindQuantitySubmit Kind = "quantity"
	// KindCurrencySubmit is the custom amount modal submission.
	KindCurrencySubmit Kind = "money_amount"
	// KindReady toggles the actor's readiness.
	KindReady Kind = "ready"
	// KindCancel ends the trade; initiator only.
	KindCancel Kind = "cancel"
	// KindReject ends the trade; counterparty only.
	KindReject Kind = "reject"
)

var knownKinds = map[Kind]bool{
	KindAddItems:       true,
	KindAddCurrency:    true,
	KindSelectItem:     true,
	KindPresetCurrency: true,
	KindCurrencyModal:  true,
	KindQuantitySubmit: true,
	KindCurrencySubmit: true,
	KindReady:          true,
	KindCancel:         true,
	KindReject:         true,
}

// Action is the decoded form of a trade custom id:
// trade:<kind>:<sessionID>[:<userID>[:<extra>]]. UserID, when present, pins
// the control to the user it was issued to; the gateway rejects events where
// it does not match the interacting user.
type Action struct {
	Kind      Kind
	SessionID string
	UserID    string
	Extra     string
}

// CustomID encodes the action into its wire form.
func (a Action) CustomID() string {
	parts := []string{customIDPrefix, string(a.Kind), a.SessionID}
	if a.UserID != "" {
		parts = append(parts, a.UserID)
		if a.Extra != "" {
			parts = append(parts, a.Extra)
		}
	}
	return strings.Join(parts, ":")
}

// ParseCustomID decodes a custom id. It reports false for ids that do not
// belong to the trading subsystem or are malformed, so other handlers in the
// process may attempt them.
func ParseCustomID(customID string) (Action, bool) {
	parts := strings.Split(customID, ":")
	if len(parts) < 3 || len(parts) > 5 || parts[0] != customIDPrefix {
		return Action{}, false
	}
	a := Action{Kind: Kind(parts[1]), SessionID: parts[2]}
	if !knownKinds[a.Kind] || a.SessionID == "" {
		return Action{}, false
	}
	if len(parts) > 3 {
		a.UserID = parts[3]
	}
	if len(parts) > 4 {
		a.Extra = parts[4]
	}
	return a, true
}
