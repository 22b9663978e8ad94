// Package logger builds *slog.Logger instances for the notification service and
// provides typed attribute helpers so log keys stay consistent across packages.
//
// Usage:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "notifyd"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.LogAttrs(ctx, slog.LevelWarn, "broadcast failed",
//		logger.NotificationID(n.ID),
//		logger.Role(n.RecipientRole),
//		logger.Error(err),
//	)
package logger
