package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"tixly/internal/analytics"
	analytics_api "tixly/internal/analytics/api"
	"tixly/internal/auth"
	"tixly/internal/categories"
	categories_db "tixly/internal/categories/db"
	categories_api "tixly/internal/categories/api"
	"tixly/internal/config"
	"tixly/internal/database/migrations"
	"tixly/internal/events"
	"tixly/internal/events/aigen"
	events_api "tixly/internal/events/api"
	events_db "tixly/internal/events/db"
	"tixly/internal/kafka"
	"tixly/internal/logger"
	"tixly/internal/mailer"
	"tixly/internal/models"
	"tixly/internal/notifications"
	notifications_api "tixly/internal/notifications/api"
	notifications_db "tixly/internal/notifications/db"
	"tixly/internal/observability"
	"tixly/internal/order"
	order_api "tixly/internal/order/api"
	order_db "tixly/internal/order/db"
	order_redis "tixly/internal/order/redis"
	"tixly/internal/reports"
	reports_api "tixly/internal/reports/api"
	reports_db "tixly/internal/reports/db"
	"tixly/internal/tickets"
	tickets_api "tixly/internal/tickets/api"
	tickets_db "tixly/internal/tickets/db"
	"tixly/internal/users"
	users_api "tixly/internal/users/api"
	users_db "tixly/internal/users/db"
	"tixly/internal/venues"
	venues_api "tixly/internal/venues/api"
	venues_db "tixly/internal/venues/db"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	if cfg.Database.DSN == "" {
		log.Fatal("CONFIG", "POSTGRES_DSN not set")
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	log.Info("DATABASE", "✅ PostgreSQL connection successful")

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Redis.Addr == "" {
		log.Fatal("CONFIG", "REDIS_ADDR not set")
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}

	// Reservation expiry depends on keyevent notifications.
	_, err = redisClient.ConfigSet(ctx, "notify-keyspace-events", "Ex").Result()
	if err != nil {
		log.Warn("REDIS", fmt.Sprintf("Failed to enable keyspace notifications: %v", err))
	} else {
		log.Info("REDIS", "Keyspace notifications enabled for expired events")
	}

	log.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s (DB: %d)", cfg.Redis.Addr, redisClient.Options().DB))
	return bunDB, redisClient
}

// subscribeReservationExpiry cancels pending orders whose inventory hold
// ran out.
func subscribeReservationExpiry(rdb *redis.Client, orderService *order.OrderService, log *logger.Logger) {
	ctx := context.Background()

	val, err := rdb.ConfigGet(ctx, "notify-keyspace-events").Result()
	if err != nil {
		log.Error("REDIS", fmt.Sprintf("Failed to get keyspace config: %v", err))
	} else if len(val) >= 2 {
		setting, _ := val[1].(string)
		if !strings.Contains(setting, "x") || !strings.Contains(setting, "E") {
			log.Warn("REDIS", "Keyspace notifications not properly configured for expiry events!")
		}
	}

	pubsub := rdb.PSubscribe(ctx, "__keyevent@0__:expired")
	log.Info("REDIS", fmt.Sprintf("Subscribed to Redis keyevent expired notifications (DB %d)", rdb.Options().DB))

	go func() {
		for msg := range pubsub.Channel() {
			if !strings.HasPrefix(msg.Payload, order_redis.ReservationPrefix) {
				continue
			}
			orderID := strings.TrimPrefix(msg.Payload, order_redis.ReservationPrefix)
			log.Info("RESERVATION", fmt.Sprintf("Reservation expired for order %s", orderID))

			if err := orderService.HandleReservationExpiry(orderID); err != nil {
				log.Error("RESERVATION", fmt.Sprintf("Failed to handle expiry for order %s: %v", orderID, err))
			}
		}
	}()
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Tixly service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	log.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.Options{
			MigrationsDir: cfg.Database.MigrationsDir,
			AutoMigrate:   true,
		})
		if err := runner.Initialize(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migration runner init failed: %v", err))
		}
		if err := runner.Up(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		log.Info("DATABASE", "Migrations applied")
	}

	log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer kafkaProducer.Close()

	if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, kafka.RequiredTopics); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		log.Info("KAFKA", "Required topics ensured successfully")
	}

	order.InitStripe()

	mail := mailer.New(cfg.Email)
	httpClient := &http.Client{Timeout: 10 * time.Second}

	eventDB := &events_db.DB{Bun: bunDB}
	orderDB := &order_db.DB{Bun: bunDB}
	ticketDB := &tickets_db.DB{Bun: bunDB}
	userDB := &users_db.DB{Bun: bunDB}
	venueDB := &venues_db.DB{Bun: bunDB}
	categoryDB := &categories_db.DB{Bun: bunDB}
	reportDB := &reports_db.DB{Bun: bunDB}
	notificationDB := &notifications_db.DB{Bun: bunDB}

	inventory := order_redis.NewInventory(redisClient, cfg.Redis.ReservationTTL)

	ticketService := tickets.NewTicketService(ticketDB, kafkaProducer)
	orderService := order.NewOrderService(orderDB, inventory, kafkaProducer, eventDB, ticketService, mail, log)
	connectService := order.NewConnectService(userDB, cfg.App.URL)
	eventService := events.NewEventService(eventDB, kafkaProducer, log)
	venueService := venues.NewVenueService(venueDB, eventDB, log)
	categoryService := categories.NewCategoryService(categoryDB, log)
	userService := users.NewUserService(userDB, cfg.App.JWTSecret, log)
	notificationService := notifications.NewNotificationService(notificationDB, orderDB, mail, log)
	reportService := reports.NewReportService(reportDB, eventDB, eventService, userService, log)
	analyticsService := analytics.NewService(bunDB)
	generator := aigen.NewFetcher(httpClient, log, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)

	orderHandler := order_api.NewHandler(orderService, connectService, log)
	ticketHandler := tickets_api.NewHandler(ticketService, orderDB, mail, log)
	eventHandler := events_api.NewHandler(eventService, generator, categoryDB, venueDB, log)
	venueHandler := venues_api.NewHandler(venueService, log)
	categoryHandler := categories_api.NewHandler(categoryService, log)
	userHandler := users_api.NewHandler(userService, log)
	notificationHandler := notifications_api.NewHandler(notificationService, log)
	reportHandler := reports_api.NewHandler(reportService, log)
	analyticsHandler := analytics_api.NewHandler(analyticsService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(observability.HTTPMiddleware)

	// --- Public Routes ---
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/login", userHandler.Login)
	r.Post("/api/webhooks/stripe", orderHandler.StripeWebhook)
	r.Get("/api/events", eventHandler.ListEvents)
	r.Get("/api/events/{eventId}", eventHandler.GetEvent)
	r.Get("/api/venues", venueHandler.ListVenues)
	r.Get("/api/venues/{venueId}", venueHandler.GetVenue)
	r.Get("/api/categories", categoryHandler.ListCategories)
	r.Get("/api/categories/{categoryId}", categoryHandler.GetCategory)

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.App.JWTSecret))
		log.Info("AUTH", "JWT middleware applied to protected API routes")

		r.Route("/api", func(r chi.Router) {
			r.Get("/me", userHandler.Me)
			r.Put("/me", userHandler.UpdateProfile)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", orderHandler.PlaceOrder)
				r.Get("/mine", orderHandler.GetMyOrders)
				r.Get("/{orderId}", orderHandler.GetOrder)
				r.Post("/{orderId}/confirm", orderHandler.ConfirmOrder)
				r.Delete("/{orderId}", orderHandler.CancelOrder)
			})

			r.Post("/create-payment-intent", orderHandler.CreatePaymentIntent)
			r.Post("/create-account", orderHandler.CreateAccount)
			r.Post("/onboard", orderHandler.Onboard)

			r.Route("/tickets", func(r chi.Router) {
				r.Get("/mine", ticketHandler.MyTickets)
				r.Get("/{ticketId}", ticketHandler.GetTicket)
			})
			r.Post("/send-email", ticketHandler.SendEmail)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.MyNotifications)
				r.Post("/{notificationId}/read", notificationHandler.MarkRead)
			})

			r.Post("/reports", reportHandler.FileReport)

			// --- Organizer Routes ---
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleOrganizer))

				r.Post("/events", eventHandler.CreateEvent)
				r.Put("/events/{eventId}", eventHandler.UpdateEvent)
				r.Delete("/events/{eventId}", eventHandler.DeleteEvent)
				r.Get("/events/mine", eventHandler.MyEvents)
				r.Post("/generate-event-data", eventHandler.GenerateEventData)

				r.Post("/venues", venueHandler.CreateVenue)
				r.Put("/venues/{venueId}", venueHandler.UpdateVenue)
				r.Delete("/venues/{venueId}", venueHandler.DeleteVenue)
				r.Get("/venues/mine", venueHandler.MyVenues)

				r.Post("/event-update-notification", notificationHandler.EventUpdateNotification)
				r.Post("/tickets/checkin", ticketHandler.Checkin)

				r.Get("/reports/mine", reportHandler.MyReports)

				r.Get("/analytics/events/{eventId}", analyticsHandler.EventAnalytics)
				r.Get("/analytics/organizer", analyticsHandler.OrganizerAnalytics)
			})

			// --- Admin Routes ---
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin))

				r.Post("/categories", categoryHandler.CreateCategory)
				r.Put("/categories/{categoryId}", categoryHandler.UpdateCategory)
				r.Delete("/categories/{categoryId}", categoryHandler.DeleteCategory)

				r.Get("/users", userHandler.ListUsers)
				r.Post("/users/{userId}/block", userHandler.BlockUser)
				r.Post("/users/{userId}/unblock", userHandler.UnblockUser)

				r.Post("/events/{eventId}/ban", eventHandler.BanEvent)
				r.Post("/events/{eventId}/unban", eventHandler.UnbanEvent)

				r.Get("/reports", reportHandler.ListReports)
				r.Post("/reports/{reportId}/resolve", reportHandler.ResolveReport)
			})
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Info("REDIS", "Starting reservation expiry subscription")
	subscribeReservationExpiry(redisClient, orderService, log)

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Tixly service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Tixly service shutdown complete")
	}
}
