package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-menu/internal/catalog"
)

func item(t *testing.T, id string) catalog.Item {
	t.Helper()
	it, ok := catalog.Default().Lookup(id)
	require.True(t, ok, "missing catalog item %s", id)
	return it
}

func TestCart_AddIncrementsExistingLine(t *testing.T) {
	c := New(DecrementClamp)
	c.Add(item(t, "burger"))
	c.Add(item(t, "fries"))
	c.Add(item(t, "burger"))

	require.Len(t, c.Lines, 2)
	assert.Equal(t, "burger", c.Lines[0].ItemID)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, 1, c.Lines[1].Quantity)
	assert.Equal(t, 3, c.Count())
	assert.True(t, c.Total().Equal(decimal.RequireFromString("64.70")), "total %s", c.Total())
}

func TestCart_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		policy    DecrementPolicy
		quantity  int
		wantLines int
		wantQty   int
	}{
		{"raise", DecrementClamp, 5, 1, 5},
		{"clamp zero", DecrementClamp, 0, 1, 1},
		{"clamp negative", DecrementClamp, -3, 1, 1},
		{"remove zero", DecrementRemove, 0, 0, 0},
		{"remove policy keeps positive", DecrementRemove, 2, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.policy)
			c.Add(item(t, "dessert"))

			assert.True(t, c.UpdateQuantity("dessert", tt.quantity))
			require.Len(t, c.Lines, tt.wantLines)
			if tt.wantLines > 0 {
				assert.Equal(t, tt.wantQty, c.Lines[0].Quantity)
			}
		})
	}
}

func TestCart_UpdateQuantityUnknown(t *testing.T) {
	c := New(DecrementClamp)
	assert.False(t, c.UpdateQuantity("burger", 2))
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := New(DecrementClamp)
	c.Add(item(t, "burger"))
	c.Add(item(t, "beer"))
	c.Add(item(t, "drink"))

	assert.True(t, c.Remove("beer"))
	assert.False(t, c.Remove("beer"))
	require.Len(t, c.Lines, 2)
	assert.Equal(t, "drink", c.Lines[1].ItemID)

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Total().IsZero())
}

func TestCart_Request(t *testing.T) {
	c := New(DecrementClamp)
	c.Add(item(t, "beer"))
	c.UpdateQuantity("beer", 3)

	req := c.Request("Ana", 21, 7)

	assert.Equal(t, "Ana", req.CustomerName)
	assert.Equal(t, 21, req.CustomerAge)
	assert.Equal(t, 7, req.TableNumber)
	require.Len(t, req.Items, 1)
	assert.True(t, req.Items[0].IsAlcoholic)
	assert.Equal(t, 3, req.Items[0].Quantity)
	assert.True(t, req.Total.Equal(decimal.RequireFromString("29.70")))
}

func TestParseDecrementPolicy(t *testing.T) {
	p, err := ParseDecrementPolicy("remove")
	require.NoError(t, err)
	assert.Equal(t, DecrementRemove, p)

	p, err = ParseDecrementPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DecrementClamp, p)

	_, err = ParseDecrementPolicy("drop")
	assert.Error(t, err)
}
