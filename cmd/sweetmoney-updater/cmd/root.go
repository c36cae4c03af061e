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
	"github.com/oshokin/sweetmoney-versioning/internal/service/client"
	"github.com/oshokin/sweetmoney-versioning/internal/service/server"
	"github.com/oshokin/sweetmoney-versioning/internal/service/updater"
	"github.com/oshokin/sweetmoney-versioning/internal/version"
)

// errUnknownLogLevel is returned for an unsupported --log-level value.
var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured log level.
	logLevel string
	// noReload skips signalling the application servers after a run.
	noReload bool
	// historyLimit caps the number of history entries printed.
	historyLimit int
	// statusGRPC reads the version from a running server over gRPC.
	statusGRPC bool
	// statusHTTP reads the version from a running server over HTTP.
	statusHTTP bool
	// statusAddress overrides the server address for status.
	statusAddress string
	// statusExpect is the version status waits for.
	statusExpect string
	// statusWait keeps status polling until it succeeds.
	statusWait bool
	// grpcAddress overrides the gRPC listen address for serve.
	grpcAddress string
	// httpAddress overrides the HTTP listen address for serve.
	httpAddress string

	// rootCmd represents the base command for managing the system version.
	rootCmd = &cobra.Command{
		Use:   "sweetmoney-updater",
		Short: "Apply versioned updates and report the system version.",
		Long: `Applies the versioned update steps of SweetMoney to the stored system version.

Each step sets the Version Record to its own version and prints its changelog.
Steps are ordered by semantic version; a run stops at the first failed step.`,
		SilenceUsage:      true,
		PersistentPreRunE: applyLogLevel,
	}

	// runCmd applies pending or explicitly named steps.
	runCmd = &cobra.Command{
		Use:   "run [version...]",
		Short: "Apply every pending step, or exactly the given versions.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := notifyContext()
			defer stop()

			return updater.Run(ctx, &updater.Options{
				ConfigPath: configPath,
				Versions:   args,
				NoReload:   noReload,
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	// stepCmd runs one step standalone and exits with its status.
	stepCmd = &cobra.Command{
		Use:   "step <version>",
		Short: "Run a single step; exits 0 on success and 1 on failure.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := notifyContext()

			code := updater.RunStep(ctx, &updater.StepOptions{
				ConfigPath: configPath,
				Version:    args[0],
				Out:        cmd.OutOrStdout(),
			})

			stop()
			os.Exit(code)
		},
	}

	// listCmd prints the known steps.
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List known steps and whether they are installed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := notifyContext()
			defer stop()

			return updater.List(ctx, &updater.ListOptions{
				ConfigPath: configPath,
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	// historyCmd prints recorded step outcomes.
	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show the update history recorded in the SQL store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := notifyContext()
			defer stop()

			return updater.History(ctx, &updater.HistoryOptions{
				ConfigPath: configPath,
				Limit:      historyLimit,
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	// statusCmd prints the current system version.
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the current system version.",
		Long: `Prints the version stored locally, or the version reported by a running server
when --grpc or --http is given. With --expect and --wait the command polls until the
server reports the expected version, which confirms that a reload took effect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := notifyContext()
			defer stop()

			source := client.SourceLocal

			switch {
			case statusGRPC:
				source = client.SourceGRPC
			case statusHTTP:
				source = client.SourceHTTP
			}

			return client.Run(ctx, &client.Options{
				ConfigPath: configPath,
				Source:     source,
				Address:    statusAddress,
				Expect:     statusExpect,
				Wait:       statusWait,
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	// serveCmd runs the version server.
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the system version over gRPC and HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := notifyContext()
			defer stop()

			return server.Run(ctx, &server.Options{
				ConfigPath:  configPath,
				GRPCAddress: grpcAddress,
				HTTPAddress: httpAddress,
			})
		},
	}
)

// Execute runs the sweetmoney-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	bindGlobalFlags(rootCmd.PersistentFlags())

	runCmd.Flags().BoolVar(&noReload, "no-reload", false, "do not signal application servers after the run")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "maximum number of entries, 0 for all")

	statusCmd.Flags().BoolVar(&statusGRPC, "grpc", false, "ask a running server over gRPC")
	statusCmd.Flags().BoolVar(&statusHTTP, "http", false, "ask a running server over HTTP")
	statusCmd.Flags().StringVarP(&statusAddress, "address", "a", "", "server address, defaults to the configured one")
	statusCmd.Flags().StringVar(&statusExpect, "expect", "", "fail unless this version is reported")
	statusCmd.Flags().BoolVarP(&statusWait, "wait", "w", false, "keep polling until the read succeeds")
	statusCmd.MarkFlagsMutuallyExclusive("grpc", "http")

	serveCmd.Flags().StringVar(&grpcAddress, "grpc-address", "", "gRPC listen address, defaults to the configured one")
	serveCmd.Flags().StringVar(&httpAddress, "http-address", "", "HTTP listen address, defaults to the configured one")

	rootCmd.AddCommand(runCmd, stepCmd, listCmd, historyCmd, statusCmd, serveCmd)
}

// bindGlobalFlags registers the flags shared by every subcommand.
func bindGlobalFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&configPath, "config", "c", "",
		fmt.Sprintf("path to configuration file (default %s or $%s)", config.DefaultConfigFilename, config.EnvConfigPath))
	flags.StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn or error (default from configuration)")
}

// applyLogLevel sets the global log level from the flag or the configuration.
func applyLogLevel(_ *cobra.Command, _ []string) error {
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

// notifyContext returns a context cancelled on SIGTERM or SIGINT.
func notifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}
