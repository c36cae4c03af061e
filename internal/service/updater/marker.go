package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/sweetmoney-versioning/internal/logger"
	"github.com/oshokin/sweetmoney-versioning/internal/service/reload"
)

const (
	// markerLifetime is the period after which a stale update marker is ignored.
	markerLifetime = 30 * time.Second

	// baseUpdaterExecutable is the updater binary name without platform extension.
	baseUpdaterExecutable = "sweetmoney-updater"
)

// errMalformedMarker is returned when the marker does not hold a process ID.
var errMalformedMarker = errors.New("malformed update marker")

// marker is a file whose presence means an update run is in progress.
type marker struct {
	// path of the marker file.
	path string
	// lifetime after which an existing marker is considered stale.
	lifetime time.Duration
	// stale terminates the updater that owns a stale marker.
	stale *reload.Signaller
}

// newMarker creates a marker at path.
func newMarker(path string) *marker {
	return &marker{
		path:     filepath.Clean(path),
		lifetime: markerLifetime,
		stale:    reload.New([]string{updaterExecutable()}, os.Kill),
	}
}

// acquire creates the marker exclusively, replacing a stale one.
func (m *marker) acquire(ctx context.Context) error {
	logger.Info(ctx, "Checking for the presence of an update marker")

	err := m.create()
	if err == nil {
		return nil
	}

	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create update marker: %w", err)
	}

	fileInfo, statErr := os.Stat(m.path)
	if statErr != nil {
		return fmt.Errorf("inspect update marker: %w", statErr)
	}

	if time.Since(fileInfo.ModTime()) <= m.lifetime {
		return errUpdaterIsRunning
	}

	logger.Info(ctx, "The update marker is too old, attempting cleanup")

	if err = m.terminateOwner(ctx); err != nil {
		logger.WarnKV(ctx, "Unable to terminate stale updater", "error", err)

		return errUpdaterIsRunning
	}

	if err = os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale update marker: %w", err)
	}

	if err = m.create(); err != nil {
		if errors.Is(err, os.ErrExist) {
			return errUpdaterIsRunning
		}

		return fmt.Errorf("create update marker: %w", err)
	}

	return nil
}

// terminateOwner kills the run recorded in the marker if it is still an updater process.
// Other processes of the same binary, such as a running server, are left alone.
func (m *marker) terminateOwner(ctx context.Context) error {
	pid, err := m.owner()
	if err != nil {
		logger.WarnKV(ctx, "Update marker has no owner, replacing it", "path", m.path, "error", err)

		return nil
	}

	killed, err := m.stale.SignalPID(ctx, pid)
	if err != nil {
		return err
	}

	if !killed {
		logger.InfoKV(ctx, "Owner of the update marker is gone", "pid", pid)
	}

	return nil
}

// owner reads the process ID written into the marker.
func (m *marker) owner() (int, error) {
	contents, err := os.ReadFile(m.path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errMalformedMarker, err)
	}

	return pid, nil
}

// release removes the marker.
func (m *marker) release(ctx context.Context) {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Unable to remove update marker", "path", m.path, "error", err)
	}
}

// create makes the marker file, failing with os.ErrExist if it is already there.
func (m *marker) create() error {
	file, err := os.OpenFile(m.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	if _, err = fmt.Fprintf(file, "%d\n", os.Getpid()); err != nil {
		_ = file.Close()
		_ = os.Remove(m.path)

		return fmt.Errorf("write update marker: %w", err)
	}

	return file.Close()
}

// updaterExecutable returns the updater binary name for this platform.
func updaterExecutable() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return baseUpdaterExecutable + ".exe"
	}

	return baseUpdaterExecutable
}
