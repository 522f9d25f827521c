// Package http implements the HTTP transport layer of the application.
//
// It exposes route wiring, request handlers and middleware for the browser
// facing login, registration and confirmation pages as well as the small
// JSON API. Sessions, CSRF protection, rate limiting, request tracing,
// access logging and metrics are handled in this package before requests
// are delegated to the service layer.
package http
