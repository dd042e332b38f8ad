// Package economy holds user records (balance + inventory) and the stores
// that persist them.
package economy

import (
	"encoding/json"
)

// DefaultBalance is granted to a user the first time their record is read.
const DefaultBalance = 1000

// InventoryItem is one line of a user's inventory. Acquired is a unix
// millisecond timestamp of when the line was first created.
type InventoryItem struct {
	ID       string                 `json:"id"`
	Quantity int                    `json:"quantity"`
	Acquired int64                  `json:"acquired"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// UserRecord is a single user's economy state. The user data file also
// carries per-game stats (fishing, blackjack, cards, ...) that this package
// does not model; those fields are kept verbatim in extra and written back
// unchanged so a record rewrite never destroys them.
type UserRecord struct {
	Balance   int64
	Inventory []InventoryItem

	extra map[string]json.RawMessage
}

// NewUserRecord returns the default record created on first read.
func NewUserRecord() *UserRecord {
	return &UserRecord{
		Balance:   DefaultBalance,
		Inventory: []InventoryItem{},
	}
}

// ItemQuantity returns the quantity of the given item, or 0 if the user does
// not hold it.
func (r *UserRecord) ItemQuantity(itemID string) int {
	for i := range r.Inventory {
		if r.Inventory[i].ID == itemID {
			return r.Inventory[i].Quantity
		}
	}
	return 0
}

// AddItem increments an existing inventory line or appends a new one stamped
// with the given acquisition time.
func (r *UserRecord) AddItem(itemID string, quantity int, acquired int64) {
	for i := range r.Inventory {
		if r.Inventory[i].ID == itemID {
			r.Inventory[i].Quantity += quantity
			return
		}
	}
	r.Inventory = append(r.Inventory, InventoryItem{
		ID:       itemID,
		Quantity: quantity,
		Acquired: acquired,
	})
}

// RemoveItem decrements an inventory line, dropping the line entirely when
// its quantity does not exceed the amount removed. Callers are expected to
// have checked ItemQuantity first.
func (r *UserRecord) RemoveItem(itemID string, quantity int) {
	for i := range r.Inventory {
		if r.Inventory[i].ID != itemID {
			continue
		}
		if r.Inventory[i].Quantity <= quantity {
			r.Inventory = append(r.Inventory[:i], r.Inventory[i+1:]...)
		} else {
			r.Inventory[i].Quantity -= quantity
		}
		return
	}
}

// Clone returns a deep copy of the record.
func (r *UserRecord) Clone() *UserRecord {
	out := &UserRecord{
		Balance:   r.Balance,
		Inventory: make([]InventoryItem, len(r.Inventory)),
	}
	copy(out.Inventory, r.Inventory)
	for i := range out.Inventory {
		if m := r.Inventory[i].Metadata; m != nil {
			mc := make(map[string]interface{}, len(m))
			for k, v := range m {
				mc[k] = v
			}
			out.Inventory[i].Metadata = mc
		}
	}
	if r.extra != nil {
		out.extra = make(map[string]json.RawMessage, len(r.extra))
		for k, v := range r.extra {
			out.extra[k] = v
		}
	}
	return out
}

// MarshalJSON writes balance and inventory alongside any preserved fields.
func (r *UserRecord) MarshalJSON() ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(r.extra)+2)
	for k, v := range r.extra {
		obj[k] = v
	}
	bal, err := json.Marshal(r.Balance)
	if err != nil {
		return nil, err
	}
	obj["balance"] = bal
	inv := r.Inventory
	if inv == nil {
		inv = []InventoryItem{}
	}
	invRaw, err := json.Marshal(inv)
	if err != nil {
		return nil, err
	}
	obj["inventory"] = invRaw
	return json.Marshal(obj)
}

// UnmarshalJSON reads balance and inventory and stashes every other field
// for later rewrite.
func (r *UserRecord) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.Balance = 0
	r.Inventory = []InventoryItem{}
	r.extra = nil
	if raw, ok := obj["balance"]; ok {
		if err := json.Unmarshal(raw, &r.Balance); err != nil {
			return err
		}
		delete(obj, "balance")
	}
	if raw, ok := obj["inventory"]; ok {
		if err := json.Unmarshal(raw, &r.Inventory); err != nil {
			return err
		}
		delete(obj, "inventory")
	}
	if len(obj) > 0 {
		r.extra = obj
	}
	return nil
}
