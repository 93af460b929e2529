package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/invoice"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/metrics"
)

type closer interface{ Close() error }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Common.LogLevel).With("service", cfg.Common.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DB.URL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	r := &repo.GormRepo{DB: db}

	var events service.EventPublisher = mykafka.Noop{}
	var producer closer = mykafka.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		p := mykafka.NewProducer(cfg.Kafka.Brokers)
		events, producer = p, p
	}

	catalog := &service.CatalogService{Repo: r, Events: events}

	if cfg.ES.URL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := es.NewClient(esCtx, es.Config{URL: cfg.ES.URL, User: cfg.ES.User, Password: cfg.ES.Password}, logger)
		esCancel()
		if err != nil {
			logger.Warn("search index disabled", "error", err)
		} else {
			idx := &es.ProductIndex{Client: client, Index: cfg.ES.Index}
			catalog.Index, catalog.Search = idx, idx
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		catalog.Cache = &repo.RedisProductCache{Client: rdb, TTL: cfg.Redis.TTL}
	}

	var payments payment.Gateway
	if cfg.Stripe.Key != "" {
		payments = payment.NewStripe(cfg.Stripe.Key, nil)
	} else {
		logger.Warn("STRIPE_KEY is empty, using in-memory payments that mark every session paid")
		payments = payment.NewMemory(true)
	}

	var notifier service.OrderNotifier = notify.Noop{}
	if cfg.SES.Sender != "" {
		sesCtx, sesCancel := context.WithTimeout(context.Background(), 10*time.Second)
		n, err := notify.NewSES(sesCtx, notify.SESConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
			Sender:          cfg.SES.Sender,
		})
		sesCancel()
		if err != nil {
			log.Fatalf("ses: %v", err)
		}
		notifier = n
	}

	cart := &service.CartService{Repo: r, Events: events}
	checkout := &service.CheckoutService{
		Repo:     r,
		Cart:     cart,
		Payments: payments,
		Currency: cfg.Stripe.Currency,
		Events:   events,
		Notifier: notifier,
	}
	orders := &service.OrderService{Repo: r, Invoices: invoice.NewGenerator(cfg.Invoice.Dir)}
	auth := &service.AuthService{
		Repo:          r,
		JWTSecret:     []byte(cfg.Auth.JWTSecret),
		RefreshSecret: []byte(cfg.Auth.RefreshSecret),
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware(cfg.Common.ServiceName))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.HTTP.AllowOrigins,
		AllowCredentials: true,
	}))
	e.Use(echomw.Secure())

	httpserver.Register(e, &httpserver.Deps{
		DB:              db,
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: catalog},
		AdminHandler:    &httpserver.AdminHTTP{Svc: catalog},
		CartHandler:     &httpserver.CartHTTP{Svc: cart},
		CheckoutHandler: &httpserver.CheckoutHTTP{Svc: checkout},
		OrderHandler:    &httpserver.OrderHTTP{Svc: orders},
		AuthHandler:     &httpserver.AuthHTTP{Svc: auth, SecureCookies: cfg.HTTP.SecureCookie},
		JWTSecret:       []byte(cfg.Auth.JWTSecret),
		SecureCookies:   cfg.HTTP.SecureCookie,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("storefront listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := producer.Close(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close", "error", err)
		}
	}

	logger.Info("storefront stopped")
}
