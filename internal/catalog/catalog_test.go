package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefault_Lookup(t *testing.T) {
	tests := []struct {
		id        string
		price     string
		alcoholic bool
	}{
		{"burger", "25.90", false},
		{"fries", "12.90", false},
		{"drink", "8.90", false},
		{"dessert", "15.90", false},
		{"beer", "9.90", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			item, ok := Default().Lookup(tt.id)
			if !ok {
				t.Fatalf("expected %q in catalog", tt.id)
			}
			if !item.Price.Equal(decimal.RequireFromString(tt.price)) {
				t.Errorf("price = %s, want %s", item.Price, tt.price)
			}
			if item.IsAlcoholic != tt.alcoholic {
				t.Errorf("IsAlcoholic = %v, want %v", item.IsAlcoholic, tt.alcoholic)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, ok := Default().Lookup("pizza"); ok {
		t.Error("did not expect pizza in catalog")
	}
}

func TestItems_ReturnsCopy(t *testing.T) {
	items := Default().Items()
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	items[0].Price = decimal.Zero

	item, _ := Default().Lookup(items[0].ID)
	if item.Price.IsZero() {
		t.Error("mutating Items() result changed the catalog")
	}
}

func TestNew_DuplicateReplaces(t *testing.T) {
	c := New(
		Item{ID: "a", Name: "first", Price: decimal.NewFromInt(1)},
		Item{ID: "a", Name: "second", Price: decimal.NewFromInt(2)},
	)

	if got := len(c.Items()); got != 1 {
		t.Fatalf("expected 1 item, got %d", got)
	}
	item, _ := c.Lookup("a")
	if item.Name != "second" {
		t.Errorf("Name = %q, want second", item.Name)
	}
}
