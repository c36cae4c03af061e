package record

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
)

// TestFileRepository_NotFound verifies Current returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))

	rec, err := repo.Current(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, rec)
}

// TestFileRepository_SetCurrent_CreatesThenOverwrites checks get-or-create followed by overwrite.
func TestFileRepository_SetCurrent_CreatesThenOverwrites(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "version.json")
	repo := NewFileRepository(file)

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return ts }

	ctx := context.Background()

	rec, err := repo.SetCurrent(ctx, "1.5.1")
	require.NoError(t, err)
	require.Equal(t, "1.5.1", rec.Version)
	require.Equal(t, ts, rec.UpdatedAt)

	rec, err = repo.SetCurrent(ctx, "1.5.2-beta")
	require.NoError(t, err)
	require.Equal(t, "1.5.2-beta", rec.Version)

	got, err := repo.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, &release.Record{Version: "1.5.2-beta", UpdatedAt: ts}, got)

	// Only the record file remains: go-update removes its temporary siblings.
	entries, err := os.ReadDir(filepath.Dir(file))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	contents, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"system_version"`)
}

// TestFileRepository_EmptyFile treats a zero-length file as a missing record.
func TestFileRepository_EmptyFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "version.json")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	repo := NewFileRepository(file)

	_, err := repo.Current(context.Background())
	require.ErrorIs(t, err, ErrNotFound)

	rec, err := repo.SetCurrent(context.Background(), "1.5.1")
	require.NoError(t, err)
	require.Equal(t, "1.5.1", rec.Version)
}

// TestFileRepository_Corrupted reports a classified persistence error for garbage content.
func TestFileRepository_Corrupted(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "version.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o600))

	repo := NewFileRepository(file)

	_, err := repo.Current(context.Background())
	require.ErrorIs(t, err, release.ErrPersistence)

	_, err = repo.SetCurrent(context.Background(), "1.5.1")
	require.ErrorIs(t, err, release.ErrPersistence)
}

// TestFileRepository_MissingDirectory fails to write into a directory that does not exist.
func TestFileRepository_MissingDirectory(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "absent", "version.json"))

	_, err := repo.SetCurrent(context.Background(), "1.5.1")
	require.Error(t, err)
	require.NotNil(t, release.KindOf(err))
}
