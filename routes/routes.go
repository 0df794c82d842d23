package routes

import (
	"github.com/gin-gonic/gin"

	"storefront/controllers"
	"storefront/middleware"
)

// Handlers is everything the route table dispatches to.
type Handlers struct {
	Auth       *controllers.AuthController
	Users      *controllers.UserController
	Products   *controllers.ProductController
	Categories *controllers.CategoryController
	Coupons    *controllers.CouponController
	Orders     *controllers.OrderController
	Cart       *controllers.CartController
	Wishlist   *controllers.WishlistController
	HeroSlides interface {
		List(*gin.Context)
		Create(*gin.Context)
		Update(*gin.Context)
		Delete(*gin.Context)
	}
	Gallery interface {
		List(*gin.Context)
		Create(*gin.Context)
		Update(*gin.Context)
		Delete(*gin.Context)
	}
	Settings *controllers.SettingsController
	Media    *controllers.MediaController
	Stats    *controllers.StatsController
	OrderWS  gin.HandlerFunc
}

type Security struct {
	JWTSecret []byte
	Revoked   middleware.TokenChecker
	Roles     middleware.RoleLookup
	Limiter   *middleware.RateLimiter
}

func RegisterRoutes(r *gin.Engine, h Handlers, sec Security) {
	auth := middleware.AuthMiddleware(sec.JWTSecret, sec.Revoked)
	optional := middleware.OptionalAuth(sec.JWTSecret, sec.Revoked)
	admin := middleware.AdminMiddleware(sec.Roles)
	limited := sec.Limiter.Middleware()

	api := r.Group("/api")
	{
		api.POST("/auth/login", limited, h.Auth.Login)
		api.POST("/auth/logout", auth, h.Auth.Logout)

		users := api.Group("/users")
		{
			users.POST("", limited, optional, h.Users.Create)
			users.PUT("", auth, h.Users.UpdateSelf)
			users.GET("", auth, admin, h.Users.List)
			users.GET("/:id", auth, h.Users.Get)
			users.PUT("/:id", auth, admin, h.Users.Update)
		}

		products := api.Group("/products")
		{
			products.GET("", h.Products.List)
			products.GET("/export", auth, admin, h.Products.Export)
			products.POST("/import", auth, admin, h.Products.Import)
			products.GET("/:id", h.Products.Get)
			products.POST("", auth, admin, h.Products.Create)
			products.PUT("/:id", auth, admin, h.Products.Update)
			products.DELETE("/:id", auth, admin, h.Products.Delete)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", h.Categories.List)
			categories.POST("", auth, admin, h.Categories.Create)
			categories.PUT("/:id", auth, admin, h.Categories.Update)
			categories.DELETE("/:id", auth, admin, h.Categories.Delete)
		}

		coupons := api.Group("/coupons")
		{
			coupons.POST("/validate", limited, h.Coupons.Validate)
			coupons.PATCH("/:id", limited, optional, h.Coupons.Patch)
			coupons.GET("", auth, admin, h.Coupons.List)
			coupons.POST("", auth, admin, h.Coupons.Create)
			coupons.GET("/:id", auth, admin, h.Coupons.Get)
			coupons.PUT("/:id", auth, admin, h.Coupons.Update)
			coupons.DELETE("/:id", auth, admin, h.Coupons.Delete)
		}

		orders := api.Group("/orders", auth)
		{
			orders.POST("", h.Orders.Checkout)
			orders.GET("/mine", h.Orders.Mine)
			orders.POST("/:id/cancel", h.Orders.CancelMine)
			orders.GET("/:id", h.Orders.Get)
			orders.GET("/ws", admin, h.OrderWS)

			orders.GET("", admin, h.Orders.List)
			orders.PATCH("", admin, h.Orders.BulkUpdateStatus)
			orders.DELETE("", admin, h.Orders.BulkDelete)
			orders.PATCH("/:id", admin, h.Orders.UpdateStatus)
			orders.DELETE("/:id", admin, h.Orders.Delete)
		}

		cart := api.Group("/cart", auth)
		{
			cart.GET("", h.Cart.Get)
			cart.GET("/summary", h.Cart.Summary)
			cart.POST("", h.Cart.Add)
			cart.PUT("/:productId", h.Cart.Update)
			cart.DELETE("/:productId", h.Cart.Remove)
			cart.DELETE("", h.Cart.Clear)
		}

		wishlist := api.Group("/wishlist", auth)
		{
			wishlist.GET("", h.Wishlist.Get)
			wishlist.POST("", h.Wishlist.Add)
			wishlist.POST("/toggle", h.Wishlist.Toggle)
			wishlist.DELETE("/:productId", h.Wishlist.Remove)
			wishlist.DELETE("", h.Wishlist.Clear)
		}

		slides := api.Group("/hero-slides")
		{
			slides.GET("", h.HeroSlides.List)
			slides.POST("", auth, admin, h.HeroSlides.Create)
			slides.PUT("/:id", auth, admin, h.HeroSlides.Update)
			slides.DELETE("/:id", auth, admin, h.HeroSlides.Delete)
		}

		gallery := api.Group("/review-gallery")
		{
			gallery.GET("", h.Gallery.List)
			gallery.POST("", auth, admin, h.Gallery.Create)
			gallery.PUT("/:id", auth, admin, h.Gallery.Update)
			gallery.DELETE("/:id", auth, admin, h.Gallery.Delete)
		}

		api.GET("/settings", h.Settings.Get)
		api.PUT("/settings", auth, admin, h.Settings.Put)

		api.POST("/upload", auth, admin, h.Media.Upload)
		api.POST("/contact", limited, h.Media.Contact)
		api.GET("/admin/stats", auth, admin, h.Stats.Get)
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
}
