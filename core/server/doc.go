// Package server holds configuration for the HTTP trigger server.
//
// The serve command runs reconciliation workflows in response to HTTP requests,
// the same role a scheduled cloud function plays. This package only carries the
// listener settings; the Fiber app itself is assembled in cmd/serve.go.
package server
