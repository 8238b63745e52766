// Package logging builds the service's zap loggers.
//
// Production logs are JSON for machine parsing; development logs are
// colored console lines. Components receive a *zap.Logger and attach their
// own fields (desktop_id, app_id, command, phase).
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("addr", ":8000"))
package logging
