package cart

import (
	"sort"
	"strings"
	"time"

	"storefront/models"
)

const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortName      = "name"
)

type Wishlist struct {
	items []models.WishlistEntry
	now   func() time.Time
}

func NewWishlist() *Wishlist {
	return &Wishlist{now: time.Now}
}

// WishlistFromItems rebuilds a wishlist, keeping the first entry for each id.
func WishlistFromItems(entries []models.WishlistEntry) *Wishlist {
	w := NewWishlist()
	for _, e := range entries {
		if e.ID == "" || w.Contains(e.ID) {
			continue
		}
		w.items = append(w.items, e)
	}
	return w
}

func (w *Wishlist) Contains(id string) bool {
	return w.index(id) >= 0
}

// Add appends item stamped with the current time. It is a no-op when the id
// is already present and reports whether anything changed.
func (w *Wishlist) Add(item models.WishlistEntry) bool {
	if w.Contains(item.ID) {
		return false
	}
	item.AddedAt = w.now()
	w.items = append(w.items, item)
	return true
}

func (w *Wishlist) Remove(id string) bool {
	i := w.index(id)
	if i < 0 {
		return false
	}
	w.items = append(w.items[:i], w.items[i+1:]...)
	return true
}

// Toggle removes item if present, otherwise adds it. It returns true when
// the item is in the wishlist afterwards.
func (w *Wishlist) Toggle(item models.WishlistEntry) bool {
	if w.Remove(item.ID) {
		return false
	}
	w.Add(item)
	return true
}

func (w *Wishlist) Clear() {
	w.items = nil
}

func (w *Wishlist) TotalItems() int {
	return len(w.items)
}

func (w *Wishlist) Items() []models.WishlistEntry {
	out := make([]models.WishlistEntry, len(w.items))
	copy(out, w.items)
	return out
}

// Sorted returns a sorted copy. Unknown keys keep insertion order.
func (w *Wishlist) Sorted(by string) []models.WishlistEntry {
	out := w.Items()
	var less func(a, b models.WishlistEntry) bool
	switch by {
	case SortNewest:
		less = func(a, b models.WishlistEntry) bool { return a.AddedAt.After(b.AddedAt) }
	case SortOldest:
		less = func(a, b models.WishlistEntry) bool { return a.AddedAt.Before(b.AddedAt) }
	case SortPriceAsc:
		less = func(a, b models.WishlistEntry) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b models.WishlistEntry) bool { return a.Price > b.Price }
	case SortName:
		less = func(a, b models.WishlistEntry) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (w *Wishlist) index(id string) int {
	for i, it := range w.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
