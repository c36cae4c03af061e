// Package reload signals running application server processes by executable name.
//
// After the version is bumped, the servers of the web application are sent
// SIGHUP so they pick up the new release. The same helper kills a stale
// updater left behind by a crashed run.
package reload
