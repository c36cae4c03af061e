package release

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errDriver = errors.New("database is locked")

// TestRecordClone verifies that Clone returns a copy and handles nil safely.
func TestRecordClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Record)(nil).Clone())

	r := &Record{
		Version:   "1.5.1",
		UpdatedAt: time.Now().UTC(),
	}

	c := r.Clone()

	require.Equal(t, r, c)
	require.NotSame(t, r, c)
}

// TestResultExitCode checks that exit codes mirror the success flag.
func TestResultExitCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, ExitSuccess, Result{Success: true}.ExitCode())
	require.Equal(t, ExitFailure, Result{Success: false}.ExitCode())
}

// TestStoreError_Unwrap ensures both the kind and the original cause are reachable.
func TestStoreError_Unwrap(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("set current: %w", NewStoreError(ErrConnection, "save setting", errDriver))

	require.ErrorIs(t, err, ErrConnection)
	require.ErrorIs(t, err, errDriver)
	require.NotErrorIs(t, err, ErrConstraint)
	require.Equal(t, ErrConnection, KindOf(err))
	require.Contains(t, err.Error(), "database is locked")

	require.Equal(t, ErrPersistence, NewStoreError(nil, "op", errDriver).Kind)
	require.NoError(t, KindOf(errDriver))
}
