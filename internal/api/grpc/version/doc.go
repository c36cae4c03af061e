// Package version implements the gRPC transport for the Version Record.
//
// The service is described by hand with well-known protobuf types:
// GetVersion takes google.protobuf.Empty and returns a google.protobuf.Struct
// with the fields version, updated_at and server_version.
package version
