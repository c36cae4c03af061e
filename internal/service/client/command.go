package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/logger"
	"github.com/oshokin/sweetmoney-versioning/internal/repository/record"
	"github.com/oshokin/sweetmoney-versioning/internal/service/common"
)

// Sources the version can be read from.
const (
	SourceLocal = "local"
	SourceGRPC  = "grpc"
	SourceHTTP  = "http"
)

// Options configures the status command.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// Source is one of SourceLocal, SourceGRPC or SourceHTTP.
	Source string
	// Address overrides the server address from config when specified.
	Address string
	// Expect makes the command poll until this version is reported.
	Expect string
	// Wait keeps retrying failed reads until success or cancellation.
	Wait bool
	// Out receives the report; defaults to stdout.
	Out io.Writer
}

// reader fetches the Version Record from one source.
type reader interface {
	GetVersion(ctx context.Context) (*release.Record, error)
}

// defaultPollInterval defines the retry delay while waiting.
const defaultPollInterval = 1 * time.Second

var (
	errUnknownSource   = errors.New("unknown status source")
	errVersionMismatch = errors.New("unexpected version")
)

// Run prints the current version from the chosen source.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "sweetmoney-status")

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	// Load settings from configuration file.
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	source, closeSource, err := openSource(ctx, cfg, opts)
	if err != nil {
		return err
	}

	defer closeSource()

	rec, err := poll(ctx, source, opts)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, formatRecord(rec))

	return nil
}

// openSource builds the reader for the requested source.
//
//nolint:ireturn // The source is chosen at runtime.
func openSource(ctx context.Context, cfg *config.Config, opts *Options) (reader, func(), error) {
	switch opts.Source {
	case "", SourceLocal:
		repo, err := record.Open(ctx, &cfg.Store)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}

		return localReader{repo: repo}, func() { _ = repo.Close() }, nil
	case SourceGRPC:
		address := cfg.Server.GRPCAddress
		if opts.Address != "" {
			address = opts.Address
		}

		client, err := common.Dial(ctx, address, common.WithCallTimeout(cfg.Server.Timeout))
		if err != nil {
			return nil, nil, err
		}

		return client, func() { _ = client.Close() }, nil
	case SourceHTTP:
		address := cfg.Server.HTTPAddress
		if opts.Address != "" {
			address = opts.Address
		}

		client, err := common.NewHTTPClient(address, cfg.Server.Timeout)
		if err != nil {
			return nil, nil, err
		}

		return client, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnknownSource, opts.Source)
	}
}

// poll reads the record once, or repeatedly while waiting is requested.
func poll(ctx context.Context, source reader, opts *Options) (*release.Record, error) {
	// attempt tries once, returns (record, completed, error).
	attempt := func() (*release.Record, bool, error) {
		rec, err := source.GetVersion(ctx)
		if err != nil {
			if !opts.Wait {
				return nil, false, err
			}

			logger.WarnKV(ctx, "Version read failed, retrying", "error", err)

			return nil, false, nil
		}

		if opts.Expect != "" && rec.Version != opts.Expect {
			if !opts.Wait {
				return nil, false, fmt.Errorf("%w: got %s, want %s", errVersionMismatch, rec.Version, opts.Expect)
			}

			logger.InfoKV(ctx, "Waiting for version", "current", rec.Version, "expected", opts.Expect)

			return nil, false, nil
		}

		return rec, true, nil
	}

	// Attempt immediately before starting retry loop.
	if rec, done, err := attempt(); err != nil || done {
		return rec, err
	}

	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			rec, done, err := attempt()
			if err != nil || done {
				return rec, err
			}
		}
	}
}

// localReader adapts a repository to the reader interface.
type localReader struct {
	repo record.Repository
}

// GetVersion reads the record from the local store.
func (r localReader) GetVersion(ctx context.Context) (*release.Record, error) {
	return r.repo.Current(ctx)
}

// formatRecord renders the record as one line.
func formatRecord(rec *release.Record) string {
	if rec.UpdatedAt.IsZero() {
		return "version: " + rec.Version
	}

	return fmt.Sprintf("version: %s, updated at: %s", rec.Version, rec.UpdatedAt.Local().Format(time.RFC3339))
}
