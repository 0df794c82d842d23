// Package catalog filters and orders an already-fetched product list and
// attaches the derived fields the storefront displays.
package catalog

import (
	"sort"
	"strings"

	"storefront/models"
	"storefront/pricing"
)

const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortName      = "name"

	StockIn  = "in"
	StockLow = "low"
	StockOut = "out"
)

// Filter is the set of storefront predicates. Zero values match everything.
type Filter struct {
	Search          string
	Category        string
	Color           string
	Badge           string
	Stock           string
	MinPrice        *float64
	MaxPrice        *float64
	Featured        *bool
	SpecialDiscount *bool
}

func (f Filter) Match(p models.Product) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!strings.Contains(strings.ToLower(p.Category), q) {
			return false
		}
	}
	if f.Category != "" && !strings.EqualFold(strings.TrimSpace(p.Category), strings.TrimSpace(f.Category)) {
		return false
	}
	if f.Color != "" && !containsFold(p.Colors, f.Color) {
		return false
	}
	if f.Badge != "" && !strings.EqualFold(p.Badge, f.Badge) {
		return false
	}
	if f.Stock != "" && !matchStock(f.Stock, p.Stock) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.SpecialDiscount != nil && p.SpecialDiscount != *f.SpecialDiscount {
		return false
	}
	return true
}

func matchStock(want string, stock int) bool {
	label := pricing.StockLabel(stock)
	switch want {
	case StockIn:
		return label != pricing.StockOut
	case StockLow:
		return label == pricing.StockLow
	case StockOut:
		return label == pricing.StockOut
	default:
		return true
	}
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func Apply(products []models.Product, f Filter, sortBy string) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	Sort(out, sortBy)
	return out
}

// Sort orders products in place. Unknown keys fall back to newest first.
func Sort(products []models.Product, by string) {
	var less func(a, b models.Product) bool
	switch by {
	case SortOldest:
		less = func(a, b models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortPriceAsc:
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b models.Product) bool { return a.Price > b.Price }
	case SortName:
		less = func(a, b models.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		less = func(a, b models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

// View is a product plus its derived display fields.
type View struct {
	models.Product
	StockStatus     string `json:"stockStatus"`
	DiscountPercent int    `json:"discountPercent"`
}

func NewView(p models.Product) View {
	return View{
		Product:         p,
		StockStatus:     pricing.StockLabel(p.Stock),
		DiscountPercent: pricing.DiscountPercent(p.OriginalPrice, p.Price),
	}
}

func Views(products []models.Product) []View {
	out := make([]View, 0, len(products))
	for _, p := range products {
		out = append(out, NewView(p))
	}
	return out
}
