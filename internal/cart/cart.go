// Package cart implements the customer's cart as an explicit value object.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"smart-menu/internal/catalog"
	"smart-menu/internal/models"
)

// DecrementPolicy decides what happens when a line's quantity is set below 1
type DecrementPolicy int

const (
	// DecrementClamp keeps the line at quantity 1; removal is explicit
	DecrementClamp DecrementPolicy = iota
	// DecrementRemove drops the line
	DecrementRemove
)

// ParseDecrementPolicy maps a config value to a policy
func ParseDecrementPolicy(s string) (DecrementPolicy, error) {
	switch s {
	case "", "clamp":
		return DecrementClamp, nil
	case "remove":
		return DecrementRemove, nil
	default:
		return DecrementClamp, fmt.Errorf("unknown decrement policy %q", s)
	}
}

// Line is a cart entry. Price is a snapshot taken when the item was added.
type Line struct {
	ItemID      string          `json:"itemId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	IsAlcoholic bool            `json:"isAlcoholic"`
	Quantity    int             `json:"quantity"`
}

// Subtotal returns price times quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered collection of lines owned by one client session
type Cart struct {
	Lines  []Line          `json:"lines"`
	Policy DecrementPolicy `json:"-"`
}

// New returns an empty cart using the given decrement policy
func New(policy DecrementPolicy) *Cart {
	return &Cart{Policy: policy}
}

// Add appends a line for item, or increments the existing line by one
func (c *Cart) Add(item catalog.Item) {
	if i := c.index(item.ID); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	c.Lines = append(c.Lines, Line{
		ItemID:      item.ID,
		Name:        item.Name,
		Price:       item.Price,
		Image:       item.Image,
		IsAlcoholic: item.IsAlcoholic,
		Quantity:    1,
	})
}

// UpdateQuantity sets a line's quantity. Values below 1 follow the cart's policy.
// It reports whether the line exists.
func (c *Cart) UpdateQuantity(id string, quantity int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	if quantity < 1 {
		if c.Policy == DecrementRemove {
			c.removeAt(i)
			return true
		}
		quantity = 1
	}
	c.Lines[i].Quantity = quantity
	return true
}

// Remove deletes a line outright, reporting whether it existed
func (c *Cart) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Lines = nil
}

// Total is recomputed on every call
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Count returns the number of units across all lines
func (c *Cart) Count() int {
	n := 0
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Request builds the checkout payload for this cart
func (c *Cart) Request(customerName string, customerAge, tableNumber int) *models.OrderRequest {
	items := make([]models.OrderRequestItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, models.OrderRequestItem{
			ID:          line.ItemID,
			Name:        line.Name,
			Price:       line.Price,
			Quantity:    line.Quantity,
			IsAlcoholic: line.IsAlcoholic,
		})
	}
	return &models.OrderRequest{
		CustomerName: customerName,
		CustomerAge:  customerAge,
		TableNumber:  tableNumber,
		Items:        items,
		Total:        c.Total(),
	}
}

func (c *Cart) index(id string) int {
	for i, line := range c.Lines {
		if line.ItemID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}
