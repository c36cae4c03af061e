package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/logger"
	"github.com/oshokin/sweetmoney-versioning/internal/repository/record"
	"github.com/oshokin/sweetmoney-versioning/internal/service/common"
	"github.com/oshokin/sweetmoney-versioning/internal/service/reload"
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// Versions restricts the run to these steps; empty applies every pending step.
	Versions []string
	// NoReload skips signalling the application servers.
	NoReload bool
	// Out receives step progress lines; defaults to stdout.
	Out io.Writer
}

// ListOptions are inputs accepted by List.
type ListOptions struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// Out receives the table; defaults to stdout.
	Out io.Writer
}

// HistoryOptions are inputs accepted by History.
type HistoryOptions struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// Limit caps the number of entries; 0 prints everything.
	Limit int
	// Out receives the table; defaults to stdout.
	Out io.Writer
}

// errHistoryUnsupported is returned when the configured store keeps no history.
var errHistoryUnsupported = errors.New("the configured store does not keep update history")

// Run applies update steps and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "sweetmoney-updater")

	cfg, repo, err := openStore(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	defer func() {
		_ = repo.Close()
	}()

	managerOptions := []ManagerOption{
		WithOutput(outputOrStdout(opts.Out)),
		WithMarkerFile(cfg.Updater.MarkerFile),
	}

	if !opts.NoReload {
		managerOptions = append(managerOptions, WithReloader(reload.NewHangup(cfg.Updater.ReloadProcesses)))
	}

	manager := NewManager(repo, DefaultCatalog(), managerOptions...)

	report, err := manager.Run(ctx, opts.Versions)
	if err != nil {
		logger.ErrorKV(ctx, "Updater run failed", "error", err)

		return err
	}

	logger.InfoKV(ctx, "Updater completed", "run_id", report.RunID, "steps", len(report.Results),
		"reloaded", report.Reloaded)

	return nil
}

// List prints every known step and whether it is installed or pending.
func List(ctx context.Context, opts *ListOptions) error {
	ctx = logger.WithName(ctx, "sweetmoney-updater")

	_, repo, err := openStore(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	defer func() {
		_ = repo.Close()
	}()

	catalog := DefaultCatalog()
	manager := NewManager(repo, catalog)

	pending, err := manager.Pending(ctx)
	if err != nil {
		return err
	}

	pendingSet := make(map[*Step]struct{}, len(pending))
	for _, step := range pending {
		pendingSet[step] = struct{}{}
	}

	out := outputOrStdout(opts.Out)
	t := common.NewTable(out)
	t.AppendHeader(table.Row{"Version", "Title", "State"})

	for _, step := range catalog.Steps() {
		state := common.Colorize(out, text.FgGreen, "installed")
		if _, ok := pendingSet[step]; ok {
			state = common.Colorize(out, text.FgYellow, "pending")
		}

		t.AppendRow(table.Row{step.Version, step.Title, state})
	}

	t.Render()

	return nil
}

// History prints recorded step outcomes, newest first.
func History(ctx context.Context, opts *HistoryOptions) error {
	ctx = logger.WithName(ctx, "sweetmoney-updater")

	_, repo, err := openStore(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	defer func() {
		_ = repo.Close()
	}()

	history, ok := repo.(record.HistoryRepository)
	if !ok {
		return errHistoryUnsupported
	}

	entries, err := history.History(ctx, opts.Limit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	out := outputOrStdout(opts.Out)
	t := common.NewTable(out)
	t.AppendHeader(table.Row{"Applied at", "Run", "Version", "Result", "Message"})

	for _, entry := range entries {
		result := common.Colorize(out, text.FgGreen, "ok")
		if !entry.Success {
			result = common.Colorize(out, text.FgRed, "failed")
		}

		t.AppendRow(table.Row{
			entry.AppliedAt.Local().Format(time.DateTime),
			entry.RunID,
			entry.Version,
			result,
			entry.Message,
		})
	}

	t.Render()

	return nil
}

// openStore loads settings and opens the configured repository.
//
//nolint:ireturn // The store is chosen by configuration.
func openStore(ctx context.Context, configPath string) (*config.Config, record.Repository, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	repo, err := record.Open(ctx, &cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	return cfg, repo, nil
}

// outputOrStdout returns out, or stdout when out is nil.
func outputOrStdout(out io.Writer) io.Writer {
	if out == nil {
		return os.Stdout
	}

	return out
}

// StepOptions are inputs accepted by RunStep.
type StepOptions struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// Version selects the step.
	Version string
	// Out receives step progress lines; defaults to stdout.
	Out io.Writer
}

// RunStep runs one step without the manager and returns the process exit code:
// 0 when the step succeeded and 1 otherwise.
func RunStep(ctx context.Context, opts *StepOptions) int {
	ctx = logger.WithName(ctx, "sweetmoney-updater")

	step, err := DefaultCatalog().Lookup(opts.Version)
	if err != nil {
		logger.ErrorKV(ctx, "Unknown update step", "version", opts.Version, "error", err)

		return release.ExitFailure
	}

	_, repo, err := openStore(ctx, opts.ConfigPath)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to open store", "error", err)

		return release.ExitFailure
	}

	defer func() {
		_ = repo.Close()
	}()

	return NewRunner(step, repo, outputOrStdout(opts.Out)).Standalone(ctx)
}
