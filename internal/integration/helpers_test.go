package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/service/server"
)

// reservePort returns address on a free TCP port and closes it.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// writeConfig saves settings for a SQLite store in a temporary directory.
// mutate may adjust the settings before they are written.
func writeConfig(t *testing.T, mutate func(cfg *config.Config)) string {
	t.Helper()

	dir := t.TempDir()

	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.Store.DSN = filepath.Join(dir, "sweetmoney.db")
	cfg.Store.SQLLogLevel = "error"
	cfg.Updater.MarkerFile = filepath.Join(dir, "update.marker")
	cfg.Server.GRPCAddress = reservePort(t)
	cfg.Server.HTTPAddress = reservePort(t)
	cfg.Server.Timeout = 3 * time.Second

	if mutate != nil {
		mutate(cfg)
	}

	path := filepath.Join(dir, config.DefaultConfigFilename)
	require.NoError(t, config.Save(path, cfg))

	return path
}

// startServer runs the version server in the background.
// Returns a stop function that cancels it and waits for shutdown.
func startServer(t *testing.T, configPath string) (stop func()) {
	t.Helper()

	// Create cancellable context for server lifecycle.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{ConfigPath: configPath})
	}()

	return func() {
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("version server did not stop")
		}
	}
}
