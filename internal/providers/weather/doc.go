// Package weather polls a public weather API for the desktop's weather widget.
//
// The poller runs as a supervised service. Transient upstream errors are
// retried per request and repeated failures open a circuit breaker until
// the next interval. Readers only ever see the last good report.
package weather
