// Package contact relays contact form submissions to a transactional email API.
//
// Submissions are stripped of markup and validated, then posted once with
// the configured API key. There is no retry or queue; callers turn the
// outcome into a status string for the visitor.
package contact
