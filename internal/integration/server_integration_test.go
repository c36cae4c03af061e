package integration

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sweetmoney-versioning/internal/service/client"
	"github.com/oshokin/sweetmoney-versioning/internal/service/updater"
)

// TestServer_StatusOverBothTransports updates the store and reads the version back from a running server.
func TestServer_StatusOverBothTransports(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, nil)
	ctx := context.Background()

	require.NoError(t, updater.Run(ctx, &updater.Options{
		ConfigPath: configPath,
		Versions:   []string{"1.5.1"},
		NoReload:   true,
	}))

	stop := startServer(t, configPath)
	defer stop()

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, source := range []string{client.SourceGRPC, client.SourceHTTP} {
		var out bytes.Buffer

		err := client.Run(waitCtx, &client.Options{
			ConfigPath: configPath,
			Source:     source,
			Expect:     "1.5.1",
			Wait:       true,
			Out:        &out,
		})
		require.NoError(t, err, source)
		require.Contains(t, out.String(), "version: 1.5.1", source)
	}

	// The server reads the store on every call, so a new run is visible immediately.
	require.NoError(t, updater.Run(ctx, &updater.Options{ConfigPath: configPath, NoReload: true}))

	var out bytes.Buffer

	require.NoError(t, client.Run(waitCtx, &client.Options{
		ConfigPath: configPath,
		Source:     client.SourceGRPC,
		Expect:     "1.5.2-beta",
		Out:        &out,
	}))
}
