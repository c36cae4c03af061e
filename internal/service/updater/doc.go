// Package updater applies versioned update steps to the Version Record.
//
// Each step bumps the stored system version to its own literal and prints a
// changelog. The manager orders steps by semantic version, guards against
// parallel runs with a marker file, records history and signals the
// application servers to reload after a successful run.
package updater
