// Package version exposes build metadata of the binaries themselves.
//
// Variables Version, Commit and BuildTime are injected at build time via Go
// ldflags. This is unrelated to the persisted Version Record, which describes
// the installed application and lives in the release domain package.
package version
