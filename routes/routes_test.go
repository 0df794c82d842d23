package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/controllers"
	"storefront/middleware"
	"storefront/models"
)

var secret = []byte("routes-secret")

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := Handlers{
		Auth:       controllers.NewAuthController(nil, nil, secret, time.Hour, time.Second),
		Users:      controllers.NewUserController(nil, time.Second),
		Products:   controllers.NewProductController(nil, nil, time.Second),
		Categories: controllers.NewCategoryController(nil, time.Second),
		Coupons:    controllers.NewCouponController(nil, nil, time.Second),
		Orders:     controllers.NewOrderController(nil, nil, nil, time.Second),
		Cart:       controllers.NewCartController(nil, nil, nil, time.Second),
		Wishlist:   controllers.NewWishlistController(nil, nil, time.Second),
		HeroSlides: controllers.NewHeroSlideController(nil, time.Second),
		Gallery:    controllers.NewGalleryController(nil, time.Second),
		Settings:   controllers.NewSettingsController(nil, time.Second),
		Media:      controllers.NewMediaController(nil, nil, ""),
		Stats:      controllers.NewStatsController(nil, time.Second),
		OrderWS:    func(c *gin.Context) { c.String(http.StatusOK, "ws") },
	}
	r := gin.New()
	require.NotPanics(t, func() {
		RegisterRoutes(r, h, Security{JWTSecret: secret, Limiter: middleware.NewRateLimiter(0.001, 1)})
	})
	return r
}

func request(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, _, err := middleware.IssueToken(secret, primitive.NewObjectID().Hex(), role, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestHealthz(t *testing.T) {
	w := request(newRouter(t), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProtectedRoutes(t *testing.T) {
	r := newRouter(t)
	user := token(t, models.RoleUser)

	for _, tc := range []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/api/orders", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/orders", user, http.StatusForbidden},
		{http.MethodGet, "/api/cart", "", http.StatusUnauthorized},
		{http.MethodPost, "/api/products", user, http.StatusForbidden},
		{http.MethodPut, "/api/settings", user, http.StatusForbidden},
		{http.MethodGet, "/api/admin/stats", user, http.StatusForbidden},
		{http.MethodDelete, "/api/hero-slides/" + primitive.NewObjectID().Hex(), "", http.StatusUnauthorized},
		{http.MethodPost, "/api/upload", "garbage", http.StatusUnauthorized},
	} {
		w := request(r, tc.method, tc.path, tc.token, "{}")
		assert.Equal(t, tc.want, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestOrderSocketAcceptsQueryToken(t *testing.T) {
	r := newRouter(t)

	w := request(r, http.MethodGet, "/api/orders/ws?token="+token(t, models.RoleAdmin), "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ws", w.Body.String())

	w = request(r, http.MethodGet, "/api/orders/ws?token="+token(t, models.RoleUser), "", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPublicWritesAreRateLimited(t *testing.T) {
	r := newRouter(t)

	w := request(r, http.MethodPost, "/api/coupons/validate", "", "{}")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(r, http.MethodPost, "/api/coupons/validate", "", "{}")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
