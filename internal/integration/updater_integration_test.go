package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/repository/record"
	"github.com/oshokin/sweetmoney-versioning/internal/service/client"
	"github.com/oshokin/sweetmoney-versioning/internal/service/updater"
)

// TestUpdater_FileStore_ConcreteScenario runs 1.5.1 and then 1.5.2-beta standalone against a JSON file store.
func TestUpdater_FileStore_ConcreteScenario(t *testing.T) {
	t.Parallel()

	versionPath := filepath.Join(t.TempDir(), "sweetmoney-version.json")
	configPath := writeConfig(t, func(cfg *config.Config) {
		cfg.Store = config.StoreConfig{Kind: "file", Path: versionPath}
	})

	ctx := context.Background()

	var out bytes.Buffer

	code := updater.RunStep(ctx, &updater.StepOptions{ConfigPath: configPath, Version: "1.5.1", Out: &out})
	require.Equal(t, release.ExitSuccess, code)

	data, err := os.ReadFile(versionPath)
	require.NoError(t, err)
	require.Equal(t, "1.5.1", gjson.GetBytes(data, "version").String())
	require.Equal(t, release.SettingKey, gjson.GetBytes(data, "key").String())

	code = updater.RunStep(ctx, &updater.StepOptions{ConfigPath: configPath, Version: "1.5.2-beta", Out: &out})
	require.Equal(t, release.ExitSuccess, code)

	data, err = os.ReadFile(versionPath)
	require.NoError(t, err)
	require.Equal(t, "1.5.2-beta", gjson.GetBytes(data, "version").String())

	out.Reset()
	require.NoError(t, client.Run(ctx, &client.Options{ConfigPath: configPath, Out: &out}))
	require.Contains(t, out.String(), "version: 1.5.2-beta")
}

// TestUpdater_SQLStore_RunRecordsHistory applies pending steps and checks the stored record and history.
func TestUpdater_SQLStore_RunRecordsHistory(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, nil)
	ctx := context.Background()

	var out bytes.Buffer

	require.NoError(t, updater.Run(ctx, &updater.Options{ConfigPath: configPath, NoReload: true, Out: &out}))
	require.Contains(t, out.String(), "[Update v1.5.2-beta] CHANGES IN THIS VERSION:")

	cfg, err := config.Load(configPath)
	require.NoError(t, err)

	repo, err := record.OpenSQL(ctx, &cfg.Store)
	require.NoError(t, err)

	defer func() {
		_ = repo.Close()
	}()

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, "1.5.2-beta", current.Version)

	entries, err := repo.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entries[0].RunID, entries[1].RunID)
	require.Equal(t, "Successfully updated to v1.5.2-beta - Update Monitor now uses Daphne", entries[0].Message)

	// The marker is removed after the run.
	_, err = os.Stat(cfg.Updater.MarkerFile)
	require.ErrorIs(t, err, os.ErrNotExist)
}
