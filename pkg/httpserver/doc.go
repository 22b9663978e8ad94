// Package httpserver runs an http.Handler until its context is cancelled and
// then drains in-flight requests within a bounded shutdown timeout.
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithOnShutdown(hub.Close),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// HealthHandler serves a JSON readiness probe built from named checks.
package httpserver
