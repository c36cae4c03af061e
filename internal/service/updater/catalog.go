package updater

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	errStepPanicked     = errors.New("update step panicked")
	errNoRepository     = errors.New("version repository is not configured")
	errDuplicateStep    = errors.New("duplicate update step")
	errUnknownStep      = errors.New("unknown update step")
	errInvalidVersion   = errors.New("invalid version")
	errUpdaterIsRunning = errors.New("the updater is already running")
	errStepFailed       = errors.New("update step failed")
)

// entry is a step with its parsed version.
type entry struct {
	step    *Step
	version *semver.Version
}

// Catalog holds the known update steps in ascending semantic version order.
type Catalog struct {
	entries []entry
}

// NewCatalog validates and orders the given steps.
func NewCatalog(steps ...*Step) (*Catalog, error) {
	c := &Catalog{
		entries: make([]entry, 0, len(steps)),
	}

	for _, step := range steps {
		v, err := parseVersion(step.Version)
		if err != nil {
			return nil, err
		}

		for _, existing := range c.entries {
			if existing.version.Equal(v) {
				return nil, fmt.Errorf("%w: %s", errDuplicateStep, step.Version)
			}
		}

		c.entries = append(c.entries, entry{step: step, version: v})
	}

	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].version.LessThan(c.entries[j].version)
	})

	return c, nil
}

// DefaultCatalog returns the steps shipped with this release.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(Bugfixes151(), UpdateMonitorDaphne152Beta())
	if err != nil {
		panic(err)
	}

	return c
}

// Steps returns every step in version order.
func (c *Catalog) Steps() []*Step {
	result := make([]*Step, 0, len(c.entries))
	for _, e := range c.entries {
		result = append(result, e.step)
	}

	return result
}

// Latest returns the newest step, or nil for an empty catalog.
func (c *Catalog) Latest() *Step {
	if len(c.entries) == 0 {
		return nil
	}

	return c.entries[len(c.entries)-1].step
}

// Lookup finds the step for a version; a leading "v" is accepted.
func (c *Catalog) Lookup(version string) (*Step, error) {
	v, err := parseVersion(version)
	if err != nil {
		return nil, err
	}

	for _, e := range c.entries {
		if e.version.Equal(v) {
			return e.step, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", errUnknownStep, version)
}

// Select returns the steps for the given versions in version order, without duplicates.
func (c *Catalog) Select(versions []string) ([]*Step, error) {
	wanted := make(map[*Step]struct{}, len(versions))

	for _, version := range versions {
		step, err := c.Lookup(version)
		if err != nil {
			return nil, err
		}

		wanted[step] = struct{}{}
	}

	result := make([]*Step, 0, len(wanted))

	for _, e := range c.entries {
		if _, ok := wanted[e.step]; ok {
			result = append(result, e.step)
		}
	}

	return result, nil
}

// Pending returns the steps newer than current. An empty current means nothing is installed.
func (c *Catalog) Pending(current string) ([]*Step, error) {
	if strings.TrimSpace(current) == "" {
		return c.Steps(), nil
	}

	installed, err := parseVersion(current)
	if err != nil {
		return nil, err
	}

	result := make([]*Step, 0, len(c.entries))

	for _, e := range c.entries {
		if e.version.GreaterThan(installed) {
			result = append(result, e.step)
		}
	}

	return result, nil
}

// parseVersion parses a semantic version, tolerating a leading "v".
func parseVersion(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", errInvalidVersion, version, err)
	}

	return v, nil
}
