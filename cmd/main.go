package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront/config"
	"storefront/controllers"
	"storefront/database"
	"storefront/integrations"
	"storefront/jobs"
	"storefront/middleware"
	"storefront/realtime"
	"storefront/routes"
	"storefront/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	store, err := database.ConnectMongo(context.Background(), cfg.MongoURI, cfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	if err := store.EnsureIndexes(context.Background()); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	products := store.ProductStore()
	categories := store.CategoryStore()
	coupons := store.CouponStore()
	orders := store.OrderStore()
	carts := store.CartStore()
	users := store.UserStore()
	settings := store.SettingsStore()
	tokens := store.TokenStore()

	scheduler, err := jobs.NewRunner(coupons, tokens, products, categories).Start()
	if err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	hub := realtime.NewHub(cfg.AllowedOrigins)
	couponSvc := services.NewCouponService(coupons)
	orderSvc := services.NewOrderService(products, orders, carts, settings, couponSvc, hub)
	timeout := cfg.RequestTimeout

	handlers := routes.Handlers{
		Auth:       controllers.NewAuthController(users, tokens, []byte(cfg.JWTSecret), cfg.TokenTTL, timeout),
		Users:      controllers.NewUserController(users, timeout),
		Products:   controllers.NewProductController(products, categories, timeout),
		Categories: controllers.NewCategoryController(categories, timeout),
		Coupons:    controllers.NewCouponController(coupons, couponSvc, timeout),
		Orders:     controllers.NewOrderController(orders, orderSvc, hub, timeout),
		Cart:       controllers.NewCartController(carts, products, orderSvc, timeout),
		Wishlist:   controllers.NewWishlistController(carts, products, timeout),
		HeroSlides: controllers.NewHeroSlideController(store.HeroSlideStore(), timeout),
		Gallery:    controllers.NewGalleryController(store.GalleryStore(), timeout),
		Settings:   controllers.NewSettingsController(settings, timeout),
		Media: controllers.NewMediaController(
			integrations.NewImageHost(cfg.ImageHostURL, cfg.ImageHostKey),
			integrations.NewMailer(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom),
			cfg.ContactInbox,
		),
		Stats:   controllers.NewStatsController(store, timeout),
		OrderWS: hub.Serve,
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), cors.New(corsConfig(cfg.AllowedOrigins)))
	if err := r.SetTrustedProxies(nil); err != nil {
		slog.Warn("Failed to reset trusted proxies", "error", err)
	}
	routes.RegisterRoutes(r, handlers, routes.Security{
		JWTSecret: []byte(cfg.JWTSecret),
		Revoked:   tokens,
		Roles:     users,
		Limiter:   middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop()
	hub.Close()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	if err := store.Disconnect(ctx); err != nil {
		slog.Error("MongoDB disconnect failed", "error", err)
	}
	slog.Info("Server exited gracefully.")
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
