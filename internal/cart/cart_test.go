package cart

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picnichood/picnic-cli/internal/state"
)

func newMemoryStore() *Store {
	return New(nil, nil)
}

func TestStore_AddDistinctIDs(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	counts := map[string]int{"apple": 3, "milk": 1, "bread": 2}
	for id, n := range counts {
		for i := 0; i < n; i++ {
			s.Add(Item{ID: id, Name: id, Price: 1})
		}
	}

	items := s.Items()
	require.Len(t, items, len(counts))
	for _, item := range items {
		assert.Equal(t, counts[item.ID], item.Quantity, "quantity for %s", item.ID)
	}
}

func TestStore_AddSameIDMerges(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	s.Add(Item{ID: "apple", Name: "Apple", Price: 0.5})
	s.Add(Item{ID: "apple", Name: "Apple", Price: 0.5})

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestStore_AddKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	for i := 0; i < 5; i++ {
		s.Add(Item{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Product %d", i), Price: 1})
	}
	s.Add(Item{ID: "p0"})

	items := s.Items()
	require.Len(t, items, 5)
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("p%d", i), item.ID)
	}
}

func TestStore_TotalPriceRecomputed(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	s.Add(Item{ID: "a", Price: 2.50})
	s.SetQuantity("a", 3)
	s.Add(Item{ID: "b", Price: 1.00})

	assert.InDelta(t, 8.50, s.TotalPrice(), 1e-9)

	s.SetQuantity("a", 1)
	assert.InDelta(t, 3.50, s.TotalPrice(), 1e-9)
}

func TestStore_SetQuantityNonPositiveRemoves(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		quantity int
	}{
		{name: "zero", quantity: 0},
		{name: "negative", quantity: -4},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newMemoryStore()
			s.Add(Item{ID: "a", Price: 1})
			s.Add(Item{ID: "b", Price: 1})
			s.SetQuantity("a", tt.quantity)

			for _, item := range s.Items() {
				assert.NotEqual(t, "a", item.ID)
				assert.GreaterOrEqual(t, item.Quantity, 1)
			}
			require.Equal(t, 1, s.Len())
		})
	}
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	s.Add(Item{ID: "a", Price: 1})
	s.Remove("missing")

	assert.Equal(t, 1, s.Len())
}

func TestStore_ClearThenTotalZero(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	s.Add(Item{ID: "a", Price: 9.99})
	s.Add(Item{ID: "b", Price: 0.01})
	s.Clear()

	assert.Zero(t, s.TotalPrice())
	assert.Zero(t, s.Len())
}

func TestStore_OrderSuccessFlagOneShot(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	assert.False(t, s.ConsumeOrderSuccess())

	s.SetOrderSuccess()
	assert.True(t, s.ConsumeOrderSuccess())
	assert.False(t, s.ConsumeOrderSuccess())
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.db")
	db, err := state.Open(path)
	require.NoError(t, err)

	s := New(db, nil)
	require.NoError(t, s.Load())
	s.Add(Item{ID: "apple", Name: "Apple", Price: 0.5, Image: "apple.png"})
	s.Add(Item{ID: "apple"})
	s.Add(Item{ID: "milk", Name: "Milk", Price: 1.2})

	restored := New(db, nil)
	require.NoError(t, restored.Load())

	items := restored.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "apple", items[0].ID)
	assert.Equal(t, "Apple", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "milk", items[1].ID)
	assert.InDelta(t, 1.7, restored.TotalPrice(), 1e-9)

	restored.Clear()
	again := New(db, nil)
	require.NoError(t, again.Load())
	assert.Zero(t, again.Len())
}
