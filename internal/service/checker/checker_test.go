package checker

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/i18n/formats"
	"github.com/oshokin/sweetmoney-versioning/internal/i18n/translation"
)

// fakeProvider returns fixed symbols per locale and fails for unknown ones.
type fakeProvider struct {
	decimal map[string]string
	group   map[string]string
}

var errNoData = errors.New("no CLDR data")

func (*fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) DecimalSymbol(locale string) (string, error) {
	if v, ok := f.decimal[locale]; ok {
		return v, nil
	}

	return "", errNoData
}

func (f *fakeProvider) GroupSymbol(locale string) (string, error) {
	if v, ok := f.group[locale]; ok {
		return v, nil
	}

	return "", errNoData
}

// newTestChecker builds a Checker over the embedded registry and the given provider.
func newTestChecker(t *testing.T, provider *fakeProvider) (*Checker, *translation.Context) {
	t.Helper()

	tc := translation.NewContext(translation.DefaultLanguage)

	registry, err := formats.NewRegistry(tc, formats.Settings{DecimalSeparator: ".", ThousandSeparator: ","})
	require.NoError(t, err)

	return New(tc, registry, provider), tc
}

// TestChecker_Check_MatchAndMismatch derives the verdict from the decimal separators.
func TestChecker_Check_MatchAndMismatch(t *testing.T) {
	t.Parallel()

	c, tc := newTestChecker(t, &fakeProvider{
		decimal: map[string]string{"en_US": ".", "pt_BR": "."},
		group:   map[string]string{"en_US": ",", "pt_BR": ","},
	})

	check, err := c.Check(context.Background(), "en-us")
	require.NoError(t, err)
	require.Equal(t, "en_US", check.Locale)
	require.Equal(t, ".", check.FrameworkDecimal)
	require.Equal(t, ",", check.FrameworkThousand)
	require.Equal(t, VerdictMatch, check.Verdict())

	check, err = c.Check(context.Background(), "pt-br")
	require.NoError(t, err)
	require.Equal(t, ",", check.FrameworkDecimal)
	require.Equal(t, ".", check.CLDRDecimal)
	require.Equal(t, VerdictMismatch, check.Verdict())

	// The active language is restored after each check.
	require.Equal(t, translation.DefaultLanguage, tc.Active())
}

// TestChecker_Check_ProviderFailure prints placeholders and still compares.
func TestChecker_Check_ProviderFailure(t *testing.T) {
	t.Parallel()

	c, _ := newTestChecker(t, &fakeProvider{})

	check, err := c.Check(context.Background(), "pt-br")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(check.CLDRDecimal, "Error: "))
	require.Contains(t, check.CLDRDecimal, errNoData.Error())
	require.Equal(t, "Error", check.CLDRThousand)
	require.ErrorIs(t, check.Err, errNoData)
	require.NotEmpty(t, check.Error)
	require.Equal(t, ",", check.FrameworkDecimal)
	require.Equal(t, VerdictMismatch, check.Verdict())
}

// TestChecker_CheckAll_AggregatesActivationErrors keeps going past bad language codes.
func TestChecker_CheckAll_AggregatesActivationErrors(t *testing.T) {
	t.Parallel()

	c, _ := newTestChecker(t, &fakeProvider{
		decimal: map[string]string{"en_US": "."},
		group:   map[string]string{"en_US": ","},
	})

	checks, err := c.CheckAll(context.Background(), []string{"", "en-us", " "})
	require.Error(t, err)
	require.Len(t, checks, 1)
	require.Equal(t, "en-us", checks[0].Language)
}

// TestPrint_LineReport checks the exact line report.
func TestPrint_LineReport(t *testing.T) {
	t.Parallel()

	c, _ := newTestChecker(t, &fakeProvider{
		decimal: map[string]string{"en_US": "."},
		group:   map[string]string{"en_US": ","},
	})

	checks, err := c.CheckAll(context.Background(), []string{"en-us", "pt-br"})
	require.NoError(t, err)

	var out bytes.Buffer

	Print(&out, checks)

	rule := strings.Repeat("-", 30)
	expected := strings.Join([]string{
		" Checking Formats...",
		rule,
		"Language: en-us",
		"  Framework Decimal: '.' (Type: string)",
		"  CLDR Decimal:  '.'",
		"  Framework Thousand: ','",
		"  CLDR Thousand:  ','",
		"  MATCH: Decimal separators agree.",
		rule,
		"Language: pt-br",
		"  Framework Decimal: ',' (Type: string)",
		"  CLDR Decimal:  'Error: no CLDR data; no CLDR data'",
		"  Framework Thousand: '.'",
		"  CLDR Thousand:  'Error'",
		"  MISMATCH: Decimal separators differ!",
		rule,
	}, "\n") + "\n"

	require.Equal(t, expected, out.String())

	out.Reset()
	PrintTable(&out, checks)
	require.Contains(t, out.String(), "MISMATCH")
	require.Contains(t, out.String(), "provider: fake")
}

// TestRun_WithPlaygroundProvider runs the command end to end against real CLDR data.
func TestRun_WithPlaygroundProvider(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	extra := filepath.Join(dir, "formats.yaml")
	require.NoError(t, os.WriteFile(extra, []byte("en_US:\n  decimal_separator: \",\"\n"), 0o600))

	cfg := config.Default()
	cfg.Formats.ExtraFile = extra
	require.NoError(t, config.Save(filepath.Join(dir, "settings.yaml"), cfg))

	var out bytes.Buffer

	err := Run(context.Background(), &Options{
		ConfigPath: filepath.Join(dir, "settings.yaml"),
		Languages:  []string{"en-us", "pt-br"},
		Provider:   "playground",
		Out:        &out,
	})
	require.NoError(t, err)

	report := out.String()
	require.Contains(t, report, "Language: en-us\n  Framework Decimal: ',' (Type: string)\n  CLDR Decimal:  '.'")
	require.Contains(t, report, "MISMATCH: Decimal separators differ!")
	require.Contains(t, report, "Language: pt-br\n  Framework Decimal: ',' (Type: string)\n  CLDR Decimal:  ','")
	require.Contains(t, report, "MATCH: Decimal separators agree.")
}
