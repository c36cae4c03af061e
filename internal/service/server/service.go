package server

import (
	"context"
	"errors"
	"sync"

	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/logger"
	"github.com/oshokin/sweetmoney-versioning/internal/repository/record"
)

// service reads the Version Record for the transports.
// It remembers the last version it served so changes are logged once.
type service struct {
	// repo reads the Version Record.
	repo record.Repository
	// lastVersion is the version returned by the previous successful read.
	lastVersion string
	// mu protects lastVersion.
	mu sync.Mutex
}

// newService creates a service backed by the provided repository.
func newService(repository record.Repository) *service {
	return &service{
		repo: repository,
	}
}

// Current returns the Version Record.
func (s *service) Current(ctx context.Context) (*release.Record, error) {
	rec, err := s.repo.Current(ctx)
	if err != nil {
		if !errors.Is(err, record.ErrNotFound) {
			logger.ErrorKV(ctx, "Failed to read version", "error", err, "kind", release.KindOf(err))
		}

		return nil, err
	}

	s.mu.Lock()
	changed := s.lastVersion != rec.Version
	previous := s.lastVersion
	s.lastVersion = rec.Version
	s.mu.Unlock()

	if changed {
		logger.InfoKV(ctx, "Serving version", "version", rec.Version, "previous", previous)
	}

	return rec, nil
}
