//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestParseVersionDocument accepts well-formed documents and rejects the rest.
func TestParseVersionDocument(t *testing.T) {
	t.Parallel()

	rec, err := ParseVersionDocument([]byte(`{"version":"1.5.1","updated_at":"2025-06-01T12:00:00Z"}`))
	require.NoError(t, err)
	require.Equal(t, "1.5.1", rec.Version)
	require.Equal(t, 2025, rec.UpdatedAt.Year())

	rec, err = ParseVersionDocument([]byte(`{"version":"1.5.2-beta"}`))
	require.NoError(t, err)
	require.True(t, rec.UpdatedAt.IsZero())

	for _, body := range []string{`{`, `{"version":15}`, `{"version":""}`, `{"version":"1.5.1","updated_at":"yesterday"}`} {
		_, err = ParseVersionDocument([]byte(body))
		require.ErrorIs(t, err, errMalformedJSON, body)
	}
}

// TestHTTPClient_GetVersion reads the record from a fake server and maps status codes.
func TestHTTPClient_GetVersion(t *testing.T) {
	t.Parallel()

	var status atomic.Int32

	status.Store(http.StatusOK)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, versionPath, r.URL.Path)
		require.Contains(t, r.UserAgent(), "sweetmoney-versioning/")

		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"version":"1.5.2-beta"}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(server.Listener.Addr().String(), time.Second)
	require.NoError(t, err)

	rec, err := client.GetVersion(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1.5.2-beta", rec.Version)

	status.Store(http.StatusNotFound)

	_, err = client.GetVersion(context.Background())
	require.ErrorIs(t, err, errVersionNotFound)

	status.Store(http.StatusInternalServerError)

	_, err = client.GetVersion(context.Background())
	require.ErrorIs(t, err, errBadHTTPStatus)

	_, err = NewHTTPClient("", time.Second)
	require.ErrorIs(t, err, errAddressRequired)
}

// TestNewTable_PlainOutput renders without colour codes to a buffer.
func TestNewTable_PlainOutput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	tbl := NewTable(&out)
	tbl.AppendHeader([]any{"Version"})
	tbl.AppendRow([]any{"1.5.1"})
	tbl.Render()

	require.Contains(t, out.String(), "1.5.1")
	require.NotContains(t, out.String(), "\x1b[")
	require.False(t, IsTerminal(&out))
}
