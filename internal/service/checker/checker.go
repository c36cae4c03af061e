package checker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/i18n/cldr"
	"github.com/oshokin/sweetmoney-versioning/internal/i18n/formats"
	"github.com/oshokin/sweetmoney-versioning/internal/i18n/translation"
	"github.com/oshokin/sweetmoney-versioning/internal/logger"
)

// Verdicts printed for a language.
const (
	VerdictMatch    = "MATCH"
	VerdictMismatch = "MISMATCH"
)

// Check is the outcome for one language.
type Check struct {
	// Language is the code as given, e.g. "pt-br".
	Language string `json:"language"`
	// Locale is the canonical locale id, e.g. "pt_BR".
	Locale string `json:"locale"`
	// FrameworkDecimal is the registry DECIMAL_SEPARATOR value.
	FrameworkDecimal any `json:"framework_decimal"`
	// FrameworkThousand is the registry THOUSAND_SEPARATOR value.
	FrameworkThousand any `json:"framework_thousand"`
	// CLDRDecimal is the provider decimal symbol or an error placeholder.
	CLDRDecimal string `json:"cldr_decimal"`
	// CLDRThousand is the provider group symbol or an error placeholder.
	CLDRThousand string `json:"cldr_thousand"`
	// Provider names the CLDR source.
	Provider string `json:"provider"`
	// Err holds the lookup failures, if any.
	Err error `json:"-"`
	// Error is Err rendered for JSON.
	Error string `json:"error,omitempty"`
}

// Match reports whether the decimal separators stringify identically.
func (c *Check) Match() bool {
	return fmt.Sprint(c.FrameworkDecimal) == c.CLDRDecimal
}

// Verdict returns VerdictMatch or VerdictMismatch.
func (c *Check) Verdict() string {
	if c.Match() {
		return VerdictMatch
	}

	return VerdictMismatch
}

// Checker compares the registry with a CLDR provider.
type Checker struct {
	// translations holds the active language.
	translations *translation.Context
	// registry provides the application formats.
	registry *formats.Registry
	// provider provides CLDR symbols.
	provider cldr.Provider
	// mu serialises checks because the active language is shared.
	mu sync.Mutex
}

// New creates a Checker from its collaborators.
func New(translations *translation.Context, registry *formats.Registry, provider cldr.Provider) *Checker {
	return &Checker{
		translations: translations,
		registry:     registry,
		provider:     provider,
	}
}

// NewFromConfig builds a Checker and its collaborators from settings.
// A non-empty providerName overrides the configured provider.
func NewFromConfig(cfg *config.FormatsConfig, providerName string) (*Checker, error) {
	translations := translation.NewContext(translation.DefaultLanguage)

	registry, err := formats.NewRegistry(translations, formats.Settings{
		DecimalSeparator:     cfg.DecimalSeparator,
		ThousandSeparator:    cfg.ThousandSeparator,
		NumberGrouping:       cfg.NumberGrouping,
		UseThousandSeparator: cfg.UseThousandSeparator,
	})
	if err != nil {
		return nil, err
	}

	if cfg.ExtraFile != "" {
		if err = registry.MergeFile(cfg.ExtraFile); err != nil {
			return nil, err
		}
	}

	if providerName == "" {
		providerName = cfg.Provider
	}

	provider, err := cldr.New(providerName)
	if err != nil {
		return nil, err
	}

	return New(translations, registry, provider), nil
}

// CheckAll checks every language. A language that cannot be activated is
// skipped and its error is aggregated; lookup failures stay inline.
func (c *Checker) CheckAll(ctx context.Context, languages []string) ([]*Check, error) {
	var (
		checks []*Check
		result *multierror.Error
	)

	for _, language := range languages {
		check, err := c.Check(ctx, language)
		if err != nil {
			result = multierror.Append(result, err)

			continue
		}

		checks = append(checks, check)
	}

	return checks, result.ErrorOrNil()
}

// Check compares the formats of one language with the language active.
func (c *Checker) Check(ctx context.Context, language string) (*Check, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	check := &Check{
		Language: language,
		Provider: c.provider.Name(),
	}

	err := c.translations.Override(language, func() error {
		check.Locale = translation.ToLocale(language)

		var lookupErr *multierror.Error

		decimal, decimalErr := c.provider.DecimalSymbol(check.Locale)
		group, groupErr := c.provider.GroupSymbol(check.Locale)

		lookupErr = multierror.Append(lookupErr, decimalErr, groupErr)
		lookupErr.ErrorFormat = joinErrors

		if cldrErr := lookupErr.ErrorOrNil(); cldrErr != nil {
			check.CLDRDecimal = "Error: " + cldrErr.Error()
			check.CLDRThousand = "Error"
			check.Err = cldrErr
		} else {
			check.CLDRDecimal = decimal
			check.CLDRThousand = group
		}

		check.FrameworkDecimal = c.lookup(ctx, check, formats.DecimalSeparator)
		check.FrameworkThousand = c.lookup(ctx, check, formats.ThousandSeparator)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("check %q: %w", language, err)
	}

	if check.Err != nil {
		check.Error = check.Err.Error()
		logger.WarnKV(ctx, "CLDR lookup failed", "language", language, "locale", check.Locale, "error", check.Err)
	}

	return check, nil
}

// lookup reads one registry value, replacing a failure with a placeholder.
func (c *Checker) lookup(ctx context.Context, check *Check, name string) any {
	value, err := c.registry.Get(name)
	if err != nil {
		logger.WarnKV(ctx, "Format lookup failed", "format", name, "error", err)

		check.Err = multierror.Append(check.Err, err)

		return "Error: " + err.Error()
	}

	return value
}

// joinErrors renders aggregated errors on one line.
func joinErrors(errs []error) string {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}

	return strings.Join(messages, "; ")
}
