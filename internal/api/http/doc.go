// Package http implements the REST surface of the desktop service: desktop
// lifecycle and command dispatch, the app catalog, search, the contact relay
// and the weather widget.
package http
