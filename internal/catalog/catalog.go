// Package catalog holds the server-side menu used to validate submitted orders.
package catalog

import (
	"github.com/shopspring/decimal"
)

// Item is a menu entry. Prices are authoritative for order validation.
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	IsAlcoholic bool            `json:"isAlcoholic"`
	Image       string          `json:"image,omitempty"`
}

// Catalog is an immutable lookup table of menu items
type Catalog struct {
	items map[string]Item
	order []string
}

var menu = New(
	Item{ID: "burger", Name: "Burger Clássico", Price: decimal.RequireFromString("25.90"), Image: "/assets/burger.jpg"},
	Item{ID: "fries", Name: "Batata Frita", Price: decimal.RequireFromString("12.90"), Image: "/assets/fries.jpg"},
	Item{ID: "drink", Name: "Refrigerante", Price: decimal.RequireFromString("8.90"), Image: "/assets/drink.jpg"},
	Item{ID: "dessert", Name: "Sobremesa", Price: decimal.RequireFromString("15.90"), Image: "/assets/dessert.jpg"},
	Item{ID: "beer", Name: "Cerveja", Price: decimal.RequireFromString("9.90"), IsAlcoholic: true, Image: "/assets/drink.jpg"},
)

// Default returns the process-wide menu
func Default() *Catalog {
	return menu
}

// New builds a catalog from items. A later item with a duplicate id replaces the earlier one.
func New(items ...Item) *Catalog {
	c := &Catalog{items: make(map[string]Item, len(items))}
	for _, item := range items {
		if _, exists := c.items[item.ID]; !exists {
			c.order = append(c.order, item.ID)
		}
		c.items[item.ID] = item
	}
	return c
}

// Lookup returns the item with the given id
func (c *Catalog) Lookup(id string) (Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Items returns a copy of the menu in declaration order
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}
