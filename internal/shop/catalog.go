// Package shop loads the item catalog that the rest of the bot consults for
// item names, prices, and tradeability.
package shop

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Item categories.
const (
	CategoryCollectible = "collectible"
	CategoryConsumable  = "consumable"
	CategoryRole        = "role"
	CategorySpecial     = "special"
	CategoryTool        = "tool"
)

// Item is one catalog entry. Tradeable is a pointer so an omitted field
// defaults to tradeable; only an explicit false blocks trading.
type Item struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Price       int64                  `json:"price"`
	Category    string                 `json:"category"`
	Emoji       string                 `json:"emoji"`
	Effects     map[string]interface{} `json:"effects,omitempty"`
	Usable      bool                   `json:"usable,omitempty"`
	Tradeable   *bool                  `json:"tradeable,omitempty"`
}

// IsTradeable reports whether the item may be offered in a trade.
func (i *Item) IsTradeable() bool {
	return i.Tradeable == nil || *i.Tradeable
}

// Catalog is the set of shop items loaded from a JSON file. Reload allows
// picking up admin edits without a restart.
type Catalog struct {
	mu    sync.RWMutex
	path  string
	items []Item
}

// Load reads the catalog file. A missing file yields an empty catalog rather
// than an error so the bot can run before any items are configured.
func Load(path string) (*Catalog, error) {
	c := &Catalog{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the catalog file.
func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			c.mu.Lock()
			c.items = nil
			c.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read shop items: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to parse shop items: %w", err)
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// Items returns all catalog entries.
func (c *Catalog) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// ItemByID returns the catalog entry for an id, or nil if unknown.
func (c *Catalog) ItemByID(id string) *Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.items {
		if c.items[i].ID == id {
			item := c.items[i]
			return &item
		}
	}
	return nil
}

// ItemsByCategory returns the catalog entries in a category.
func (c *Catalog) ItemsByCategory(category string) []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Item
	for i := range c.items {
		if c.items[i].Category == category {
			out = append(out, c.items[i])
		}
	}
	return out
}

// IsTradeable reports whether an item id may be traded. Unknown ids are not
// tradeable.
func (c *Catalog) IsTradeable(id string) bool {
	item := c.ItemByID(id)
	return item != nil && item.IsTradeable()
}
