package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/logger"
	"github.com/oshokin/sweetmoney-versioning/internal/repository/record"
	"github.com/oshokin/sweetmoney-versioning/internal/service/reload"
)

// Report describes one manager run.
type Report struct {
	// RunID groups the history entries of this run.
	RunID string
	// Previous is the version installed before the run; empty if none.
	Previous string
	// Results holds one result per applied step, in order.
	Results []release.Result
	// Reloaded counts the processes signalled after the run.
	Reloaded int
}

// Manager sequences update steps against one repository.
type Manager struct {
	// repo stores the Version Record.
	repo record.Repository
	// catalog lists the available steps.
	catalog *Catalog
	// out receives step progress lines.
	out io.Writer
	// marker prevents parallel runs; nil disables it.
	marker *marker
	// reloader signals the application servers after success; nil disables it.
	reloader *reload.Signaller
	// now is the clock used for history timestamps.
	now func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithOutput sets where step progress lines are written.
func WithOutput(out io.Writer) ManagerOption {
	return func(m *Manager) {
		if out != nil {
			m.out = out
		}
	}
}

// WithMarkerFile enables the concurrent run guard at path.
func WithMarkerFile(path string) ManagerOption {
	return func(m *Manager) {
		if path != "" {
			m.marker = newMarker(path)
		}
	}
}

// WithReloader sets the processes to signal after a successful run.
func WithReloader(reloader *reload.Signaller) ManagerOption {
	return func(m *Manager) {
		m.reloader = reloader
	}
}

// NewManager creates a Manager.
func NewManager(repo record.Repository, catalog *Catalog, opts ...ManagerOption) *Manager {
	m := &Manager{
		repo:    repo,
		catalog: catalog,
		out:     io.Discard,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Run applies the given versions, or every pending step when none are given.
// Steps run in version order and the run stops at the first failure without rollback.
func (m *Manager) Run(ctx context.Context, versions []string) (*Report, error) {
	if m.marker != nil {
		if err := m.marker.acquire(ctx); err != nil {
			return nil, err
		}

		defer m.marker.release(ctx)
	}

	report := &Report{
		RunID: uuid.NewString(),
	}

	ctx = logger.WithKV(ctx, "run_id", report.RunID)

	previous, err := m.currentVersion(ctx)
	if err != nil {
		return nil, err
	}

	report.Previous = previous

	steps, err := m.plan(previous, versions)
	if err != nil {
		return nil, err
	}

	if len(steps) == 0 {
		logger.InfoKV(ctx, "No update required", "current", previous)

		return report, nil
	}

	for _, step := range steps {
		result := step.Apply(ctx, m.repo, m.out)
		report.Results = append(report.Results, result)

		m.appendHistory(ctx, report.RunID, step, result)

		if !result.Success {
			return report, fmt.Errorf("%w: v%s: %w", errStepFailed, step.Version, result.Err)
		}
	}

	report.Reloaded = m.reload(ctx)

	logger.InfoKV(ctx, "Updater run completed", "from", previous, "steps", len(steps))

	return report, nil
}

// Pending returns the steps a bare run would apply.
func (m *Manager) Pending(ctx context.Context) ([]*Step, error) {
	current, err := m.currentVersion(ctx)
	if err != nil {
		return nil, err
	}

	return m.catalog.Pending(current)
}

// currentVersion returns the installed version or an empty string.
func (m *Manager) currentVersion(ctx context.Context) (string, error) {
	if m.repo == nil {
		return "", errNoRepository
	}

	current, err := m.repo.Current(ctx)

	switch {
	case err == nil:
		return current.Version, nil
	case errors.Is(err, record.ErrNotFound):
		return "", nil
	default:
		return "", fmt.Errorf("read current version: %w", err)
	}
}

// plan chooses the steps to apply.
func (m *Manager) plan(current string, versions []string) ([]*Step, error) {
	if len(versions) > 0 {
		return m.catalog.Select(versions)
	}

	return m.catalog.Pending(current)
}

// appendHistory records a step result when the repository keeps history.
func (m *Manager) appendHistory(ctx context.Context, runID string, step *Step, result release.Result) {
	history, ok := m.repo.(record.HistoryRepository)
	if !ok {
		return
	}

	err := history.AppendHistory(ctx, &release.HistoryEntry{
		RunID:     runID,
		Version:   step.Version,
		Success:   result.Success,
		Message:   result.Message,
		AppliedAt: m.now().UTC(),
	})
	if err != nil {
		logger.WarnKV(ctx, "Unable to record update history", "version", step.Version, "error", err)
	}
}

// reload signals the application servers; failures are logged, not returned.
func (m *Manager) reload(ctx context.Context) int {
	if m.reloader.Empty() {
		return 0
	}

	signalled, err := m.reloader.Signal(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Unable to reload application servers", "error", err)
	}

	return signalled
}
