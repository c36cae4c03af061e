// Package client implements the status command.
//
// It reads the Version Record from the local store or from a running server
// over gRPC or HTTP. With a wait option it keeps polling until the server
// reports the expected version, which is how a reload is confirmed.
package client
