package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-service/config"
	"marketplace-service/consumers"
	"marketplace-service/controllers"
	"marketplace-service/database"
	"marketplace-service/mailer"
	"marketplace-service/rabbitmq"
	"marketplace-service/repository"
	"marketplace-service/repository/memory"
	"marketplace-service/repository/mysql"
	"marketplace-service/services"
)

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

func openStorage(ctx context.Context, cfg *config.Config) (repository.Repositories, *sql.DB, error) {
	switch cfg.Storage {
	case "memory":
		slog.Warn("Using in-memory storage, data is lost on restart")
		return memory.New().Repositories(), nil, nil
	case "mysql":
		db, err := database.InitDB(ctx, cfg)
		if err != nil {
			return repository.Repositories{}, nil, err
		}
		return mysql.New(db), db, nil
	default:
		return repository.Repositories{}, nil, errors.New("unknown STORAGE " + cfg.Storage)
	}
}

func main() {
	cfg := config.LoadConfig()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, db, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("Storage initialization failed", "err", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	m := mailer.New(cfg)

	// Order events are optional: without a broker the API still works and
	// nothing is published.
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		rmq, err := rabbitmq.NewRabbitMQ(cfg)
		switch {
		case err != nil:
			slog.Warn("RabbitMQ unavailable, order events disabled", "err", err)
		default:
			defer rmq.Close()
			if err := rmq.SetupQueues(); err != nil {
				slog.Warn("Failed to setup RabbitMQ queues, order events disabled", "err", err)
				break
			}
			if err := consumers.NewOrderConsumer(m).Start(ctx, rmq.Channel, cfg); err != nil {
				slog.Warn("Failed to start order consumer", "err", err)
			}
			events = rmq
		}
	}

	authSvc := services.NewAuthService(repos.Tx, repos.Users, repos.ResetTokens, m, services.AuthConfig{
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.JWTTTL,
		ResetTokenTTL: cfg.ResetTokenTTL,
	})
	catalogSvc := services.NewCatalogService(repos.Products, repos.Categories, repos.Reviews)
	reviewSvc := services.NewReviewService(repos.Tx, repos.Products, repos.Reviews, repos.Orders)
	cartSvc := services.NewCartService(repos.Tx, repos.Carts, repos.Products)
	checkoutSvc := services.NewCheckoutService(repos, events)
	orderSvc := services.NewOrderService(repos, events)
	vendorSvc := services.NewVendorService(repos)

	gin.SetMode(gin.ReleaseMode)
	r := controllers.SetupRouter(controllers.RouterConfig{
		JWTSecret:    cfg.JWTSecret,
		CookieSecure: cfg.CookieSecure,
		Logger:       logger,
	}, controllers.Controllers{
		Auth:    controllers.NewAuthController(authSvc, cfg.CookieSecure, cfg.JWTTTL),
		Catalog: controllers.NewCatalogController(catalogSvc, reviewSvc),
		Cart:    controllers.NewCartController(cartSvc),
		Orders:  controllers.NewOrderController(checkoutSvc, orderSvc),
		Vendor:  controllers.NewVendorController(vendorSvc),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Marketplace service starting", "addr", cfg.HTTPAddr, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "err", err)
	}
}
