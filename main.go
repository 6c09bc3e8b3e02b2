package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	admin_svc "ms-marketplace/internal/admin"
	admin_api "ms-marketplace/internal/admin/api"
	admin_db "ms-marketplace/internal/admin/db"
	"ms-marketplace/internal/analytics"
	analytics_api "ms-marketplace/internal/analytics/api"
	analytics_db "ms-marketplace/internal/analytics/db"
	"ms-marketplace/internal/auth"
	auth_api "ms-marketplace/internal/auth/api"
	auth_db "ms-marketplace/internal/auth/db"
	"ms-marketplace/internal/cart"
	cart_api "ms-marketplace/internal/cart/api"
	cart_db "ms-marketplace/internal/cart/db"
	"ms-marketplace/internal/catalog"
	catalog_api "ms-marketplace/internal/catalog/api"
	catalog_db "ms-marketplace/internal/catalog/db"
	"ms-marketplace/internal/config"
	"ms-marketplace/internal/database/migrations"
	"ms-marketplace/internal/kafka"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/notification"
	"ms-marketplace/internal/order"
	order_api "ms-marketplace/internal/order/api"
	order_db "ms-marketplace/internal/order/db"
	pay_svc "ms-marketplace/internal/payment"
	pay_api "ms-marketplace/internal/payment/api"
	pay_db "ms-marketplace/internal/payment/db"
	"ms-marketplace/internal/realtime"
	realtime_api "ms-marketplace/internal/realtime/api"
	realtime_db "ms-marketplace/internal/realtime/db"
)

func connectDatabases(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err == nil {
			err = sqldb.Ping()
			if err == nil {
				break
			}
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	log.Info("DATABASE", "PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting marketplace service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	cfg := config.Load()

	ctx := context.Background()
	bunDB, redisClient := connectDatabases(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.Up(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	log.Info("DATABASE", "Schema migrations applied")

	log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	requiredTopics := []string{cfg.Kafka.Topics.OrderCreated, cfg.Kafka.Topics.OrderStatus}
	if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		log.Info("KAFKA", "Required topics ensured successfully")
	}

	// Services.
	mailer := notification.NewMailer(cfg.Email, log)
	resetStore := auth.NewResetTokenStore(redisClient, cfg.Auth.ResetTokenTTL)
	authService := auth.NewService(&auth_db.DB{Bun: bunDB}, resetStore, mailer, cfg.Auth, log)
	catalogService := catalog.NewService(&catalog_db.DB{Bun: bunDB}, log)
	cartService := cart.NewService(&cart_db.DB{Bun: bunDB}, catalogService.DB, log)
	cartHandoff := cart.NewHandoff(redisClient)
	orderService := order.NewOrderService(&order_db.DB{Bun: bunDB}, cartService, cartHandoff, producer, cfg.Kafka.Topics, cfg.Order, log)
	analyticsService := analytics.NewService(&analytics_db.DB{Bun: bunDB}, log)
	adminService := admin_svc.NewService(&admin_db.DB{Bun: bunDB}, log)
	hub := realtime.NewHub()
	realtimeService := realtime.NewService(hub, &realtime_db.DB{Bun: bunDB}, redisClient, log)
	paymentService := pay_svc.NewService(&pay_db.DB{Bun: bunDB}, orderService, cfg.Stripe.SecretKey, log)

	// Handlers.
	authHandler := auth_api.NewHandler(authService, log)
	catalogHandler := catalog_api.NewHandler(catalogService, log)
	cartHandler := cart_api.NewHandler(cartService, cartHandoff, log)
	orderHandler := order_api.NewHandler(orderService, log)
	analyticsHandler := analytics_api.NewHandler(analyticsService, log)
	adminHandler := admin_api.NewHandler(adminService, log)
	realtimeHandler := realtime_api.NewHandler(realtimeService, hub, log)
	paymentHandler := pay_api.NewHandler(paymentService, cfg.Auth.JWTSecret, log)

	// Notification worker consumes off the queue; mail problems never touch
	// the request path.
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.OrderStatus, cfg.Kafka.GroupID)
	defer consumer.Close()
	worker := notification.NewWorker(consumer, mailer, log)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go worker.Run(workerCtx)
	log.Info("APP", "Notification worker started")

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	authMiddleware := auth.Middleware(cfg.Auth.JWTSecret, cfg.Auth.OIDCIssuer)

	// Public surface.
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)
	r.Post("/api/auth/password-reset/request", authHandler.RequestPasswordReset)
	r.Post("/api/auth/password-reset/confirm", authHandler.ResetPassword)
	r.Get("/api/products", catalogHandler.ListProducts)
	r.Get("/api/products/{productId}", catalogHandler.GetProduct)
	r.Get("/api/products/{productId}/variants", catalogHandler.ListVariants)

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/api/profile", authHandler.GetProfile)
		r.Put("/api/profile", authHandler.UpdateProfile)

		r.Get("/api/cart", cartHandler.GetCart)
		r.Post("/api/cart/items", cartHandler.AddItem)
		r.Put("/api/cart/items/{itemId}", cartHandler.UpdateItem)
		r.Delete("/api/cart/items/{itemId}", cartHandler.RemoveItem)
		r.Post("/api/cart/repay", cartHandler.ConsumeRepayCart)

		r.Post("/api/orders/checkout", orderHandler.Checkout)
		r.Get("/api/orders", orderHandler.ListMyOrders)
		r.Get("/api/orders/{orderId}", orderHandler.GetMyOrder)
		r.Post("/api/orders/{orderId}/repay", orderHandler.RepayOrder)

		r.Get("/api/chat/stream", realtimeHandler.StreamChat)
		r.Post("/api/chat/messages", realtimeHandler.SendMessage)
		r.Get("/api/chat/history", realtimeHandler.History)
		r.Get("/api/live/{channelId}/watch", realtimeHandler.WatchStream)
		r.Post("/api/live/{channelId}/heart", realtimeHandler.SendHeart)

		// Seller surface.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleSeller, models.RoleAdmin))

			r.Post("/api/seller/products", catalogHandler.CreateProduct)
			r.Put("/api/seller/products/{productId}", catalogHandler.UpdateProduct)
			r.Delete("/api/seller/products/{productId}", catalogHandler.DeleteProduct)
			r.Post("/api/seller/products/{productId}/variants", catalogHandler.CreateVariant)
			r.Put("/api/seller/variants/{variantId}", catalogHandler.UpdateVariant)
			r.Delete("/api/seller/variants/{variantId}", catalogHandler.DeleteVariant)

			r.Get("/api/seller/orders", orderHandler.ListSellerOrders)
			r.Get("/api/seller/orders/{orderId}", orderHandler.GetSellerOrder)
			r.Put("/api/seller/orders/{orderId}/status", orderHandler.UpdateOrderStatus)
			r.Get("/api/seller/stats", analyticsHandler.SellerStats)

			r.Post("/api/live/{channelId}/start", realtimeHandler.StartStream)
			r.Post("/api/live/{channelId}/end", realtimeHandler.EndStream)
			r.Post("/api/live/{channelId}/pin", realtimeHandler.PinProduct)
		})

		// Admin surface.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Get("/api/admin/users", adminHandler.ListUsers)
			r.Put("/api/admin/users/{userId}/role", adminHandler.UpdateUserRole)
			r.Delete("/api/admin/users/{userId}", adminHandler.DeleteUser)

			r.Get("/api/admin/orders", orderHandler.AdminListOrders)
			r.Put("/api/admin/orders/{orderId}/status", orderHandler.AdminOverrideStatus)

			r.Get("/api/admin/dashboard", analyticsHandler.DashboardSummary)
			r.Get("/api/admin/revenue/sellers", analyticsHandler.SellerRevenueReport)
			r.Get("/api/admin/revenue/weekly", analyticsHandler.WeeklyRevenue)

			r.Get("/api/admin/promotions", adminHandler.ListPromotions)
			r.Post("/api/admin/promotions", adminHandler.CreatePromotion)
			r.Put("/api/admin/promotions/{promotionId}", adminHandler.UpdatePromotion)
			r.Post("/api/admin/promotions/{promotionId}/toggle", adminHandler.TogglePromotion)
			r.Delete("/api/admin/promotions/{promotionId}", adminHandler.DeletePromotion)
		})
	})

	// Payment surface keeps its own gin engine.
	r.Mount("/api/payments", paymentHandler.Routes())

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Server listening on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("Server error: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("APP", "Shutdown signal received")

	stopWorker()
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP", fmt.Sprintf("Graceful shutdown failed: %v", err))
	}
	log.Info("APP", "Server stopped")
}
