// Package server wires and runs the application's HTTP server together with
// its background workers.
//
// It provides startup, signal handling, and graceful shutdown of the server
// and the workers.
package server
