package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/cache"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/cart"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/catalog"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/checkout"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/orders"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/outbox"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/store"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/whatsapp"

	h "github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/http"
)

type Config struct {
	HTTPPort        string
	DBPath          string
	RedisAddr       string
	KafkaBrokers    []string
	ProductAPIURL   string
	ProductAPIKey   string
	OrdersAPIURL    string
	OrdersAPIKey    string
	WhatsAppPhone   string
	ShippingFlat    float64
	FreeShipAbove   float64
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "storefront.db"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		KafkaBrokers:    splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
		ProductAPIURL:   getEnv("PRODUCT_API_URL", ""),
		ProductAPIKey:   getEnv("PRODUCT_API_KEY", ""),
		OrdersAPIURL:    getEnv("ORDERS_API_URL", ""),
		OrdersAPIKey:    getEnv("ORDERS_API_KEY", ""),
		WhatsAppPhone:   getEnv("WHATSAPP_PHONE", "911234567890"),
		ShippingFlat:    getEnvFloat("SHIPPING_FLAT_RATE", 50),
		FreeShipAbove:   getEnvFloat("FREE_SHIPPING_ABOVE", 1000),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func splitNonEmpty(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func main() {
	cfg := loadConfig()

	cartStore, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open cart store: %v", err)
	}
	defer cartStore.Close()

	if err := cartStore.RunMigrations(); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Catalog cache is optional; without Redis every read goes to the
	// product API.
	var productCache cache.ProductCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		productCache = cache.NewRedisCache(redisClient)
	}

	catalogClient := catalog.NewClient(cfg.ProductAPIURL, cfg.ProductAPIKey)
	catalogService := catalog.NewService(catalogClient, productCache)

	ordersClient := orders.NewClient(cfg.OrdersAPIURL, cfg.OrdersAPIKey)
	notifier := whatsapp.NewNotifier(cfg.WhatsAppPhone)

	shipping := cart.ShippingPolicy{FlatRate: cfg.ShippingFlat, FreeAbove: cfg.FreeShipAbove}
	orchestrator := checkout.NewOrchestrator(cartStore, ordersClient, notifier, cartStore, shipping)

	rootCtx, stopPoller := context.WithCancel(context.Background())
	defer stopPoller()

	if len(cfg.KafkaBrokers) > 0 {
		writer := outbox.NewKafkaWriter(cfg.KafkaBrokers, outbox.DefaultTopic)
		defer writer.Close()
		poller := outbox.NewPoller(cartStore, writer)
		go poller.Run(rootCtx)
		log.Printf("order event poller started, topic %s", outbox.DefaultTopic)
	}

	cartHandler := h.NewCartHandler(cartStore, catalogService, shipping, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(catalogService, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(orchestrator, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(ordersClient, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{product_id}", productHandler.Get)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.GetState)
			r.Put("/form", checkoutHandler.UpdateForm)
			r.Post("/review", checkoutHandler.Review)
			r.Post("/cancel", checkoutHandler.Cancel)
			r.Post("/confirm", checkoutHandler.Confirm)
			r.Post("/reset", checkoutHandler.Reset)
		})
		r.Get("/orders", ordersHandler.ListOrders)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stopPoller()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
