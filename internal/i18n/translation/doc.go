// Package translation holds the active language of a formatting context.
//
// A Context replaces process-wide translation state: callers create one,
// pass it to whatever needs the active language, and use Override to switch
// languages for the duration of a callback.
package translation
