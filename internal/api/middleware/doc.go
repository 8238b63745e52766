// Package middleware provides HTTP middleware for the desktop API.
//
// Middleware stack includes:
//   - RequestID: ULID request ids, echoed in X-Request-ID
//   - Logger: structured access log via zap
//   - Recovery: panic recovery with a JSON 500
//   - CORS: cross-origin resource sharing with configurable origins
//   - RateLimit: per-IP token bucket with idle client cleanup
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.CORSFromOrigins(origins)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
