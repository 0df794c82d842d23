// Package cart implements the shopping cart and wishlist as plain values.
// Callers own an instance per user; persistence stores only the item list.
package cart

import (
	"github.com/shopspring/decimal"

	"storefront/models"
)

type Cart struct {
	items []models.CartLine
}

func New() *Cart {
	return &Cart{}
}

// FromItems rebuilds a cart from stored lines. Duplicate ids are merged and
// lines with a non-positive quantity are dropped.
func FromItems(lines []models.CartLine) *Cart {
	c := New()
	for _, line := range lines {
		if line.Quantity <= 0 || line.ID == "" {
			continue
		}
		c.Add(line, line.Quantity)
	}
	return c
}

// Add puts qty units of item in the cart, summing with an existing line.
func (c *Cart) Add(item models.CartLine, qty int) {
	if qty <= 0 {
		qty = 1
	}
	if i := c.index(item.ID); i >= 0 {
		c.items[i].Quantity += qty
		return
	}
	item.Quantity = qty
	c.items = append(c.items, item)
}

func (c *Cart) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// SetQuantity sets the line quantity exactly; qty <= 0 removes the line.
// It reports whether the id was in the cart.
func (c *Cart) SetQuantity(id string, qty int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		return true
	}
	c.items[i].Quantity = qty
	return true
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Quantity(id string) int {
	if i := c.index(id); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []models.CartLine {
	out := make([]models.CartLine, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) TotalPrice() float64 {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) index(id string) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Snapshot is the JSON shape returned to clients.
type Snapshot struct {
	Items      []models.CartLine `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice float64           `json:"totalPrice"`
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		Items:      c.Items(),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}
