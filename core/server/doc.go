// Package server holds the HTTP server configuration.
//
// The serve command reads Config to listen for manual pass triggers, health probes
// and metrics scrapes, and to bound graceful shutdown.
package server
