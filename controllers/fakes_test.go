package controllers

import (
	"bytes"
	"context"
	"image"
	"io"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/database"
	"storefront/integrations"
	"storefront/models"
)

type memCoupons struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Coupon
}

func newMemCoupons(cs ...*models.Coupon) *memCoupons {
	m := &memCoupons{byID: map[primitive.ObjectID]*models.Coupon{}}
	for _, c := range cs {
		m.byID[c.ID] = c
	}
	return m
}

func (m *memCoupons) List(context.Context) ([]models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Coupon{}
	for _, c := range m.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memCoupons) FindByID(_ context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCoupons) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.Code == models.NormalizeCouponCode(code) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memCoupons) Create(_ context.Context, c *models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.Code = models.NormalizeCouponCode(c.Code)
	for _, existing := range m.byID {
		if existing.Code == c.Code {
			return database.ErrDuplicate
		}
	}
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCoupons) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if v, ok := fields["isActive"].(bool); ok {
		c.IsActive = v
	}
	if v, ok := fields["usageLimit"].(int); ok {
		c.UsageLimit = v
	}
	if v, ok := fields["discountType"].(string); ok {
		c.DiscountType = v
	}
	if v, ok := fields["discountValue"].(float64); ok {
		c.DiscountValue = v
	}
	cp := *c
	return &cp, nil
}

func (m *memCoupons) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memCoupons) IncrementUsage(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.UsedCount >= c.UsageLimit {
		return false, nil
	}
	c.UsedCount++
	return true, nil
}

func (m *memCoupons) DecrementUsage(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byID[id]; ok && c.UsedCount > 0 {
		c.UsedCount--
	}
	return nil
}

type memProducts struct {
	mu       sync.Mutex
	products []*models.Product
	adjusted map[string]int
}

func newMemProducts(ps ...*models.Product) *memProducts {
	return &memProducts{products: ps, adjusted: map[string]int{}}
}

func (m *memProducts) find(id primitive.ObjectID) *models.Product {
	for _, p := range m.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *memProducts) List(context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.find(id)
	if p == nil {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	cp := *p
	m.products = append(m.products, &cp)
	return nil
}

func (m *memProducts) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Product, *models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.find(id)
	if p == nil {
		return nil, nil, database.ErrNotFound
	}
	before := *p
	if v, ok := fields["category"].(string); ok {
		p.Category = v
	}
	if v, ok := fields["price"].(float64); ok {
		p.Price = v
	}
	if v, ok := fields["stock"].(int); ok {
		p.Stock = v
	}
	if v, ok := fields["name"].(string); ok {
		p.Name = v
	}
	after := *p
	return &before, &after, nil
}

func (m *memProducts) Delete(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return p, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memProducts) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.find(id)
	if p == nil || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (m *memProducts) IncrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p := m.find(id); p != nil {
		p.Stock += qty
	}
	return nil
}

func (m *memProducts) AdjustCount(_ context.Context, name string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjusted[name] += delta
	return nil
}

type memOrders struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
}

func newMemOrders(orders ...*models.Order) *memOrders {
	m := &memOrders{orders: map[primitive.ObjectID]*models.Order{}}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memOrders) Insert(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) List(_ context.Context, status models.OrderStatus, userID primitive.ObjectID) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		if (status == "" || o.Status == status) && (userID.IsZero() || o.UserID == userID) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (m *memOrders) Delete(_ context.Context, ids ...primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.orders[id]; ok {
			delete(m.orders, id)
			n++
		}
	}
	return n, nil
}

type memCarts struct {
	mu        sync.Mutex
	carts     map[primitive.ObjectID][]models.CartLine
	wishlists map[primitive.ObjectID][]models.WishlistEntry
}

func newMemCarts() *memCarts {
	return &memCarts{
		carts:     map[primitive.ObjectID][]models.CartLine{},
		wishlists: map[primitive.ObjectID][]models.WishlistEntry{},
	}
}

func (m *memCarts) LoadCart(_ context.Context, userID primitive.ObjectID) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CartLine(nil), m.carts[userID]...), nil
}

func (m *memCarts) SaveCart(_ context.Context, userID primitive.ObjectID, items []models.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = append([]models.CartLine(nil), items...)
	return nil
}

func (m *memCarts) LoadWishlist(_ context.Context, userID primitive.ObjectID) ([]models.WishlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.WishlistEntry(nil), m.wishlists[userID]...), nil
}

func (m *memCarts) SaveWishlist(_ context.Context, userID primitive.ObjectID, items []models.WishlistEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wishlists[userID] = append([]models.WishlistEntry(nil), items...)
	return nil
}

type memSettings struct {
	mu sync.Mutex
	s  models.SiteSettings
}

func (m *memSettings) Get(context.Context) (models.SiteSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *memSettings) Put(_ context.Context, s models.SiteSettings) (models.SiteSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return s, nil
}

type memSlides struct {
	mu     sync.Mutex
	slides []models.HeroSlide
}

func (m *memSlides) List(_ context.Context, activeOnly bool) ([]models.HeroSlide, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.HeroSlide{}
	for _, s := range m.slides {
		if !activeOnly || s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSlides) Create(_ context.Context, s *models.HeroSlide) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Touch(time.Now())
	m.slides = append(m.slides, *s)
	return nil
}

func (m *memSlides) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.HeroSlide, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slides {
		if m.slides[i].ID == id {
			if v, ok := fields["order"].(int); ok {
				m.slides[i].Order = v
			}
			if v, ok := fields["isActive"].(bool); ok {
				m.slides[i].IsActive = v
			}
			s := m.slides[i]
			return &s, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memSlides) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slides {
		if m.slides[i].ID == id {
			m.slides = append(m.slides[:i], m.slides[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

type fakeUploader struct {
	failOn string
	widths map[string]int
}

func (f fakeUploader) Upload(_ context.Context, filename string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	if filename == f.failOn {
		return "", io.ErrUnexpectedEOF
	}
	if f.widths != nil {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		f.widths[filename] = cfg.Width
	}
	return "https://img.example/" + filename, nil
}

type fakeMailer struct {
	sent []integrations.Email
	err  error
}

func (f *fakeMailer) Send(_ context.Context, e integrations.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

type memUsers struct {
	mu    sync.Mutex
	users []*models.User
}

func (m *memUsers) List(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == database.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = primitive.NewObjectID()
	cp := *u
	m.users = append(m.users, &cp)
	return nil
}

func (m *memUsers) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			if v, ok := fields["role"].(string); ok {
				u.Role = v
			}
			if v, ok := fields["name"].(string); ok {
				u.Name = v
			}
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

type memTokens struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemTokens() *memTokens { return &memTokens{revoked: map[string]time.Time{}} }

func (m *memTokens) Revoke(_ context.Context, token string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[token] = exp
	return nil
}

func (m *memTokens) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[token]
	return ok, nil
}
