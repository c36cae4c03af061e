package updater

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/repository/record"
)

// memoryRepository is an in-memory Repository and HistoryRepository.
type memoryRepository struct {
	mu      sync.Mutex
	records []*release.Record
	history []*release.HistoryEntry
	// failOn makes SetCurrent fail for this version.
	failOn string
	// failWith is the error returned for failOn.
	failWith error
}

// Current returns the single record or ErrNotFound.
func (m *memoryRepository) Current(context.Context) (*release.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.records) == 0 {
		return nil, record.ErrNotFound
	}

	return m.records[0].Clone(), nil
}

// SetCurrent fetches-or-creates the record and stores version.
func (m *memoryRepository) SetCurrent(_ context.Context, version string) (*release.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failOn == version {
		return nil, m.failWith
	}

	if len(m.records) == 0 {
		m.records = append(m.records, new(release.Record))
	}

	m.records[0].Version = version
	m.records[0].UpdatedAt = time.Now()

	return m.records[0].Clone(), nil
}

// AppendHistory stores one entry.
func (m *memoryRepository) AppendHistory(_ context.Context, entry *release.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append(m.history, entry)

	return nil
}

// History returns every entry, newest first.
func (m *memoryRepository) History(context.Context, int) ([]*release.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*release.HistoryEntry, 0, len(m.history))
	for i := len(m.history) - 1; i >= 0; i-- {
		result = append(result, m.history[i])
	}

	return result, nil
}

// Close does nothing.
func (m *memoryRepository) Close() error { return nil }

// count returns the number of stored records.
func (m *memoryRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.records)
}

// panickingRepository panics on every write.
type panickingRepository struct {
	memoryRepository
}

// SetCurrent panics.
func (*panickingRepository) SetCurrent(context.Context, string) (*release.Record, error) {
	panic("database driver exploded")
}
