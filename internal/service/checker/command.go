package checker

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/logger"
	"github.com/oshokin/sweetmoney-versioning/internal/service/common"
)

// separatorWidth is the width of the dashed rule between languages.
const separatorWidth = 30

// Options controls the format checker.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Languages overrides the configured language codes.
	Languages []string
	// Provider overrides the configured CLDR provider.
	Provider string
	// Table prints a table instead of the line report.
	Table bool
	// Out receives the report; defaults to stdout.
	Out io.Writer
}

// Run checks every language and prints the report.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "sweetmoney-formats")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	checker, err := NewFromConfig(&cfg.Formats, opts.Provider)
	if err != nil {
		return fmt.Errorf("initialise checker: %w", err)
	}

	languages := opts.Languages
	if len(languages) == 0 {
		languages = cfg.Formats.Languages
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	checks, err := checker.CheckAll(ctx, languages)

	if opts.Table {
		PrintTable(out, checks)
	} else {
		Print(out, checks)
	}

	if err != nil {
		return fmt.Errorf("check formats: %w", err)
	}

	return nil
}

// Print writes the line report.
func Print(out io.Writer, checks []*Check) {
	rule := strings.Repeat("-", separatorWidth)

	_, _ = fmt.Fprintln(out, " Checking Formats...")
	_, _ = fmt.Fprintln(out, rule)

	for _, check := range checks {
		_, _ = fmt.Fprintf(out, "Language: %s\n", check.Language)
		_, _ = fmt.Fprintf(out, "  Framework Decimal: '%v' (Type: %T)\n", check.FrameworkDecimal, check.FrameworkDecimal)
		_, _ = fmt.Fprintf(out, "  CLDR Decimal:  '%s'\n", check.CLDRDecimal)
		_, _ = fmt.Fprintf(out, "  Framework Thousand: '%v'\n", check.FrameworkThousand)
		_, _ = fmt.Fprintf(out, "  CLDR Thousand:  '%s'\n", check.CLDRThousand)

		if check.Match() {
			_, _ = fmt.Fprintln(out, "  MATCH: Decimal separators agree.")
		} else {
			_, _ = fmt.Fprintln(out, "  MISMATCH: Decimal separators differ!")
		}

		_, _ = fmt.Fprintln(out, rule)
	}
}

// PrintTable writes the report as a table.
func PrintTable(out io.Writer, checks []*Check) {
	t := common.NewTable(out)
	t.AppendHeader(table.Row{"Language", "Locale", "Framework decimal", "CLDR decimal",
		"Framework thousand", "CLDR thousand", "Verdict"})

	for _, check := range checks {
		verdict := common.Colorize(out, text.FgGreen, check.Verdict())
		if !check.Match() {
			verdict = common.Colorize(out, text.FgRed, check.Verdict())
		}

		t.AppendRow(table.Row{
			check.Language,
			check.Locale,
			fmt.Sprintf("%q", fmt.Sprint(check.FrameworkDecimal)),
			fmt.Sprintf("%q", check.CLDRDecimal),
			fmt.Sprintf("%q", fmt.Sprint(check.FrameworkThousand)),
			fmt.Sprintf("%q", check.CLDRThousand),
			verdict,
		})
	}

	t.SetCaption("provider: %s", providerName(checks))
	t.Render()
}

// providerName returns the provider of the first check.
func providerName(checks []*Check) string {
	if len(checks) == 0 {
		return "none"
	}

	return checks[0].Provider
}
