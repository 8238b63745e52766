// Package main is the entry point for the deskfolio server.
//
// The server hosts simulated desktops for a portfolio site: a lock screen,
// power flow and window manager driven by commands over REST or WebSocket.
//
// Configuration:
//   - Environment variables, optionally from a .env file
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	deskfolio serve --port 8000
//	deskfolio serve --dev --catalog ./catalog
//	deskfolio version
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
