// Package catalog maps application ids to their metadata and window content.
//
// The catalog is the collaborator that hands the window manager an opaque
// payload per app. A default catalog is compiled into the binary; a
// directory with the same layout can replace it:
//
//	catalog.yaml | catalog.yml | catalog.toml
//	content/<app-id>.<ext>
//
// Content types are sniffed from the bytes. HTML is sanitized before it is
// served, other text passes through and binary files are base64 encoded.
// Search ranks title matches above matches in the extracted page text.
package catalog
