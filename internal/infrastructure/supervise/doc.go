// Package supervise wraps suture supervisors with zap logging and
// context-error sanitizing for long-running background services.
package supervise
