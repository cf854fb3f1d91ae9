// Package logger builds the zap logger used across the service.
//
// Development (debug) and production presets are supported, with json or console
// encoding. WithRayID attaches the request ray id set by the rayid middleware so every
// log line of an HTTP-triggered pass can be correlated.
//
// # Usage
//
//	log, err := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Pass failed", zap.Error(err))
package logger
