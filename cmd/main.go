package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"smart-menu/internal/cart"
	"smart-menu/internal/catalog"
	"smart-menu/internal/config"
	"smart-menu/internal/database"
	"smart-menu/internal/logger"
	"smart-menu/internal/messaging"
	"smart-menu/internal/payment"
	cartservice "smart-menu/internal/services/cart"
	"smart-menu/internal/services/notification"
	"smart-menu/internal/services/order"
	"smart-menu/internal/services/tracking"
	"smart-menu/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var (
		mode       = flag.String("mode", "order-service", "Service mode (order-service, notification-subscriber)")
		configPath = flag.String("config", "config.yaml", "Path to the YAML configuration file")
		port       = flag.Int("port", 0, "HTTP port, overrides server.port")
		prefetch   = flag.Int("prefetch", 10, "RabbitMQ prefetch count for the notification subscriber")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("service_starting", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
		"port": cfg.Server.Port,
	})

	switch *mode {
	case "order-service":
		err = runOrderService(ctx, cfg, log)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	default:
		err = fmt.Errorf("unknown mode: %s", *mode)
	}
	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runOrderService serves the menu, cart, order and tracking APIs on one port
func runOrderService(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	policy, err := cart.ParseDecrementPolicy(cfg.Cart.DecrementPolicy)
	if err != nil {
		return err
	}

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, database.Migrations()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	var events order.EventPublisher
	if cfg.MessagingEnabled() {
		conn, err := messaging.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("initialize messaging: %w", err)
		}
		defer conn.Close()
		events = messaging.NewPublisher(conn, log)
	} else {
		log.Warn("messaging_disabled", "No RabbitMQ host configured, order events are not published", "startup", nil)
	}

	menu := catalog.Default()
	orders := order.NewService(order.NewPostgresRepository(db), payment.NewGateway(cfg, log), events, menu, log)
	lookups := tracking.NewService(tracking.NewPostgresStore(db), log)
	sessions := cartservice.NewSessionStore(cfg.Cart, log)

	mux := http.NewServeMux()
	order.NewHandler(orders, log).RegisterRoutes(mux)
	tracking.NewHandler(lookups, log).RegisterRoutes(mux)
	cartservice.NewHandler(sessions, menu, policy, orders, log).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           web.WithLogging(log, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("service_started", fmt.Sprintf("Order service listening on port %d", cfg.Server.Port), "startup", map[string]interface{}{
			"port":     cfg.Server.Port,
			"policy":   cfg.Cart.DecrementPolicy,
			"base_url": cfg.Server.PublicBaseURL,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("graceful_shutdown", "Shutting down HTTP server", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// runNotificationSubscriber prints every order event until ctx is cancelled
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	if !cfg.MessagingEnabled() {
		return errors.New("notification subscriber requires rabbitmq.host")
	}

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize messaging: %w", err)
	}

	consumer := messaging.NewConsumer(conn, log, messaging.QueueNotifications, "notification-subscriber", prefetch)
	return notification.NewSubscriber(consumer, log, os.Stdout).Start(ctx)
}
