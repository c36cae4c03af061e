package client

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/repository/record"
)

// sequenceReader returns queued versions, then repeats the last one.
type sequenceReader struct {
	versions []string
	calls    atomic.Int32
	err      error
}

// GetVersion returns the next queued version.
func (r *sequenceReader) GetVersion(context.Context) (*release.Record, error) {
	n := int(r.calls.Add(1)) - 1
	if r.err != nil {
		return nil, r.err
	}

	n = min(n, len(r.versions)-1)

	return &release.Record{Version: r.versions[n]}, nil
}

// TestPoll_ExpectWithoutWait fails immediately on a version mismatch.
func TestPoll_ExpectWithoutWait(t *testing.T) {
	t.Parallel()

	source := &sequenceReader{versions: []string{"1.5.1"}}

	_, err := poll(context.Background(), source, &Options{Expect: "1.5.2-beta"})
	require.ErrorIs(t, err, errVersionMismatch)
}

// TestPoll_WaitsForExpectedVersion retries until the expected version is reported.
func TestPoll_WaitsForExpectedVersion(t *testing.T) {
	t.Parallel()

	source := &sequenceReader{versions: []string{"1.5.1", "1.5.2-beta"}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec, err := poll(ctx, source, &Options{Expect: "1.5.2-beta", Wait: true})
	require.NoError(t, err)
	require.Equal(t, "1.5.2-beta", rec.Version)
	require.Equal(t, int32(2), source.calls.Load())
}

// TestPoll_WaitHonoursCancellation stops retrying when the context ends.
func TestPoll_WaitHonoursCancellation(t *testing.T) {
	t.Parallel()

	source := &sequenceReader{err: errors.New("connection refused")}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := poll(ctx, source, &Options{Wait: true})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestRun_LocalFileStore prints the version stored in a file-backed store.
func TestRun_LocalFileStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	versionPath := filepath.Join(dir, "version.json")

	_, err := record.NewFileRepository(versionPath).SetCurrent(context.Background(), "1.5.1")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Store = config.StoreConfig{Kind: "file", Path: versionPath}

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	configPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(configPath, data, 0o600))

	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), &Options{ConfigPath: configPath, Out: &out}))
	require.Contains(t, out.String(), "version: 1.5.1, updated at: ")

	err = Run(context.Background(), &Options{ConfigPath: configPath, Source: "carrier-pigeon", Out: &out})
	require.ErrorIs(t, err, errUnknownSource)
}
