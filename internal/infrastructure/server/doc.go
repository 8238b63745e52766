// Package server wires the desktop service together: configuration, the app
// catalog, the desktop registry, providers, the gin router and a supervised
// http.Server with gzip compression.
package server
