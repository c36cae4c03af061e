package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/logger"
	"github.com/oshokin/sweetmoney-versioning/internal/service/checker"
	"github.com/oshokin/sweetmoney-versioning/internal/version"
)

// errUnknownLogLevel is returned for an unsupported --log-level value.
var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel overrides the configured log level.
	logLevel string
	// languages overrides the configured language codes.
	languages []string
	// provider overrides the configured CLDR provider.
	provider string
	// asTable prints a table instead of the line report.
	asTable bool

	// rootCmd represents the base command for checking number formats.
	rootCmd = &cobra.Command{
		Use:   "sweetmoney-formats [language...]",
		Short: "Compare application number formats with CLDR data.",
		Long: `For every language, activates it, reads DECIMAL_SEPARATOR and THOUSAND_SEPARATOR
from the application format registry, asks a CLDR provider for the decimal and group
symbols of the matching locale and prints MATCH or MISMATCH for the decimal separators.

Languages come from the arguments, then --languages, then the configuration file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return applyLogLevel()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			selected := languages
			if len(args) > 0 {
				selected = args
			}

			return checker.Run(ctx, &checker.Options{
				ConfigPath: configPath,
				Languages:  selected,
				Provider:   provider,
				Table:      asTable,
				Out:        cmd.OutOrStdout(),
			})
		},
	}
)

// Execute runs the sweetmoney-formats CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	bindFlags(rootCmd.Flags())
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		fmt.Sprintf("path to configuration file (default %s or $%s)", config.DefaultConfigFilename, config.EnvConfigPath))
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level (default from configuration)")
}

// bindFlags registers the checker flags.
func bindFlags(flags *pflag.FlagSet) {
	flags.StringSliceVarP(&languages, "languages", "L", nil, "comma-separated language codes, e.g. en-us,pt-br")
	flags.StringVarP(&provider, "provider", "p", "", "CLDR provider: playground or text (default from configuration)")
	flags.BoolVarP(&asTable, "table", "t", false, "print a table instead of the line report")
}

// applyLogLevel sets the global log level from the flag or the configuration.
func applyLogLevel() error {
	level := logLevel
	if level == "" {
		if cfg, err := config.LoadOrDefault(configPath); err == nil {
			level = cfg.LogLevel
		}
	}

	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, level)
	}

	logger.SetLevel(parsed)

	return nil
}
