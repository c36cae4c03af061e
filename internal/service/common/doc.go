// Package common holds helpers shared by several services.
//
// It provides clients that read the Version Record from a running server
// over gRPC or HTTP, and the table writer used for console reports.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
