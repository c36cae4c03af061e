// Package release contains the core domain types for system versioning.
//
// It defines Record (the installed version of the application), Result (the
// outcome reported by an update step) and the closed set of store error kinds
// surfaced to callers instead of bare driver errors.
package release
