package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
)

// Repository defines persistence operations for the Version Record.
type Repository interface {
	// Current returns the installed version or ErrNotFound.
	Current(ctx context.Context) (*release.Record, error)
	// SetCurrent fetches-or-creates the record and stores the given version in it.
	SetCurrent(ctx context.Context, version string) (*release.Record, error)
	// Close releases the underlying resources.
	Close() error
}

// HistoryRepository is implemented by repositories that keep update history.
type HistoryRepository interface {
	// AppendHistory stores the outcome of one step.
	AppendHistory(ctx context.Context, entry *release.HistoryEntry) error
	// History returns up to limit entries, newest first. A non-positive limit returns everything.
	History(ctx context.Context, limit int) ([]*release.HistoryEntry, error)
}

var (
	// ErrNotFound is returned when no version has been recorded yet.
	ErrNotFound = errors.New("version record not found")
	// errUnknownStoreKind is returned for an unsupported store kind.
	errUnknownStoreKind = errors.New("unknown store kind")
)

// Open creates the repository described by the store settings.
//
//nolint:ireturn // The concrete store is chosen by configuration.
func Open(ctx context.Context, cfg *config.StoreConfig) (Repository, error) {
	switch cfg.Kind {
	case "file":
		return NewFileRepository(cfg.Path), nil
	case "sql":
		repo, err := OpenSQL(ctx, cfg)
		if err != nil {
			return nil, err
		}

		return repo, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownStoreKind, cfg.Kind)
	}
}
