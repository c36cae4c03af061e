package release

import "time"

// SettingKey names the persisted setting holding the installed version.
const SettingKey = "system_version"

// Record is the single persisted entry describing the installed version.
type Record struct {
	// Version is the semantic version string, e.g. "1.5.2-beta".
	Version string
	// UpdatedAt is when the version was last written.
	UpdatedAt time.Time
}

// Clone returns a copy of the record to avoid leaking internal references.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	cloned := *r

	return &cloned
}
