package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"storefront/models"
)

func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func entry(id, name string, price float64) models.WishlistEntry {
	return models.WishlistEntry{ID: id, Name: name, Price: price}
}

func TestWishlistAddIsIdempotent(t *testing.T) {
	w := NewWishlist()
	assert.True(t, w.Add(entry("a", "A", 1)))
	assert.False(t, w.Add(entry("a", "A", 1)))
	assert.Equal(t, 1, w.TotalItems())
	assert.False(t, w.Items()[0].AddedAt.IsZero())
}

func TestWishlistToggleIsItsOwnInverse(t *testing.T) {
	w := NewWishlist()
	w.Add(entry("a", "A", 1))
	before := w.Items()

	assert.True(t, w.Toggle(entry("b", "B", 2)))
	assert.False(t, w.Toggle(entry("b", "B", 2)))
	assert.Equal(t, before, w.Items())
}

func TestWishlistRemoveAndClear(t *testing.T) {
	w := NewWishlist()
	w.Add(entry("a", "A", 1))
	w.Add(entry("b", "B", 1))

	assert.True(t, w.Remove("a"))
	assert.False(t, w.Remove("a"))
	assert.False(t, w.Contains("a"))

	w.Clear()
	assert.Equal(t, 0, w.TotalItems())
}

func TestWishlistSorted(t *testing.T) {
	w := NewWishlist()
	w.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	w.Add(entry("1", "banana", 30))
	w.Add(entry("2", "Apple", 10))
	w.Add(entry("3", "cherry", 20))

	names := func(es []models.WishlistEntry) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}

	assert.Equal(t, []string{"3", "2", "1"}, names(w.Sorted(SortNewest)))
	assert.Equal(t, []string{"1", "2", "3"}, names(w.Sorted(SortOldest)))
	assert.Equal(t, []string{"2", "3", "1"}, names(w.Sorted(SortPriceAsc)))
	assert.Equal(t, []string{"1", "3", "2"}, names(w.Sorted(SortPriceDesc)))
	assert.Equal(t, []string{"2", "1", "3"}, names(w.Sorted(SortName)))
	assert.Equal(t, []string{"1", "2", "3"}, names(w.Sorted("bogus")))
}

func TestWishlistFromItemsDropsDuplicates(t *testing.T) {
	w := WishlistFromItems([]models.WishlistEntry{
		entry("a", "A", 1), entry("a", "A again", 1), entry("", "blank", 1), entry("b", "B", 1),
	})
	assert.Equal(t, 2, w.TotalItems())
	assert.Equal(t, "A", w.Items()[0].Name)
}
