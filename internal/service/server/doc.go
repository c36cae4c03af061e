// Package server runs the version server.
//
// The server exposes the Version Record over gRPC, together with the standard
// health service, and over an HTTP API that also serves format checks. Both
// listeners run until the context is cancelled and then shut down gracefully.
package server
