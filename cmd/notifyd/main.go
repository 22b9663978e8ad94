// Command notifyd serves the notification HTTP API and the realtime
// websocket endpoint.
//
// Configuration comes from the environment (and a .env file when present).
// Without DATABASE_URL notifications are kept in memory; without REDIS_URL
// realtime pushes stay within this process.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifykit/handler"
	"github.com/dmitrymomot/notifykit/modules/notifications"
	"github.com/dmitrymomot/notifykit/pkg/broadcast"
	appconfig "github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	notify "github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/realtime"
	"github.com/dmitrymomot/notifykit/pkg/redis"
	"github.com/dmitrymomot/notifykit/pkg/requestid"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "notifyd:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	if err := appconfig.Load(&cfg); err != nil {
		return err
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(cfg.App.Env, cfg.App.Service),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if cfg.App.LogLevel != "" {
		logOpts = append(logOpts, logger.WithLevel(logger.ParseLevel(cfg.App.LogLevel)))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var checks []httpserver.Check

	storage, closeStorage, err := openStorage(ctx, cfg.PG, log)
	if err != nil {
		return err
	}
	defer closeStorage()
	checks = append(checks, storageChecks(storage)...)

	hub := broadcast.NewHub[notify.Notification](
		broadcast.WithBufferSize(cfg.App.HubBufferSize),
		broadcast.WithHubLogger(log),
	)
	var rooms broadcast.Broadcaster[notify.Notification] = hub

	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		relay := broadcast.NewRedisRelay(hub, client, cfg.Redis.Channel, log)
		go relay.Supervise(ctx, cfg.Redis.RelayMinBackoff, cfg.Redis.RelayMaxBackoff)
		rooms = relay
		checks = append(checks,
			httpserver.Check{Name: "redis", Probe: redis.Healthcheck(client)},
			httpserver.Check{Name: "redis_relay", Probe: relay.Healthcheck},
		)
		log.InfoContext(ctx, "cross-instance relay enabled", slog.String("channel", cfg.Redis.Channel))
	}

	roomBroadcaster := notify.NewRoomBroadcaster(rooms)

	gatewayOpts := []notify.GatewayOption{
		notify.WithGatewayLogger(log),
		notify.WithFanOutConcurrency(cfg.App.FanOutConcurrency),
		notify.WithEmailRateLimit(cfg.App.EmailRatePerSecond, cfg.App.EmailRateBurst),
		notify.WithEmailLinkBase(cfg.App.EmailLinkBase),
	}

	mailer, err := email.New(cfg.Email)
	switch {
	case errors.Is(err, email.ErrDisabled):
		log.InfoContext(ctx, "email delivery disabled")
	case err != nil:
		return err
	default:
		gatewayOpts = append(gatewayOpts, notify.WithMailer(mailer))
	}

	if cfg.App.Recipients != "" {
		dir, err := notify.ParseStaticDirectory(cfg.App.Recipients)
		if err != nil {
			return fmt.Errorf("NOTIFY_RECIPIENTS: %w", err)
		}
		gatewayOpts = append(gatewayOpts, notify.WithDirectory(dir))
	}

	gateway := notify.NewGateway(storage, roomBroadcaster, gatewayOpts...)
	errorHandler := handler.NewErrorHandler(log, handler.WithErrorMapper(notifications.ErrorMapper))
	ws := realtime.NewServer(roomBroadcaster,
		realtime.WithLogger(log),
		realtime.WithAllowedOrigins(cfg.App.AllowedOrigins...),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Get("/health", httpserver.HealthHandler(log, cfg.App.HealthTimeout, checks...))
	r.Get("/ws", ws.ServeHTTP)
	r.Mount("/notifications", notifications.NewService(gateway, errorHandler).Handle())

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithOnShutdown(func() {
			if err := hub.Close(); err != nil {
				log.Error("failed to close hub", logger.Error(err))
			}
		}),
	)
	return srv.Run(ctx, r)
}
