package cldr

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/de_DE"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/en_GB"
	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/es_ES"
	"github.com/go-playground/locales/fr"
	"github.com/go-playground/locales/fr_FR"
	"github.com/go-playground/locales/it"
	"github.com/go-playground/locales/it_IT"
	"github.com/go-playground/locales/pt"
	"github.com/go-playground/locales/pt_BR"
	"github.com/go-playground/locales/pt_PT"
	"golang.org/x/text/message"

	"github.com/oshokin/sweetmoney-versioning/internal/i18n/translation"
)

// Provider names accepted by New.
const (
	ProviderPlayground = "playground"
	ProviderText       = "text"
)

// sample is rendered to read the separators back: it has three digit groups and one fraction digit.
const sample = 1234567.5

// sampleDigits is the number of digits in any rendering of sample.
const sampleDigits = 8

var (
	// ErrUnknownLocale is returned when a provider has no data for the locale.
	ErrUnknownLocale = errors.New("unknown locale")
	// errUnknownProvider is returned by New for an unsupported provider name.
	errUnknownProvider = errors.New("unknown symbol provider")
	// errNoDecimal is returned when a rendered sample has no decimal separator.
	errNoDecimal = errors.New("no decimal separator in rendered sample")
	// errUnexpectedSample is returned when a rendered sample cannot be read back reliably.
	errUnexpectedSample = errors.New("unexpected rendered sample")
)

// Provider returns the number symbols of a locale such as "pt_BR".
type Provider interface {
	// Name identifies the provider in reports.
	Name() string
	// DecimalSymbol returns the decimal separator.
	DecimalSymbol(locale string) (string, error)
	// GroupSymbol returns the digit group separator.
	GroupSymbol(locale string) (string, error)
}

// New returns the provider with the given name.
//
//nolint:ireturn // The provider is chosen by configuration.
func New(name string) (Provider, error) {
	switch name {
	case ProviderPlayground, "":
		return NewPlayground(), nil
	case ProviderText:
		return NewText(), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownProvider, name)
	}
}

// Playground reads symbols from go-playground/locales translators.
type Playground struct {
	// translators maps locale names to translator constructors.
	translators map[string]func() locales.Translator
}

// NewPlayground creates a provider for the bundled locales.
func NewPlayground() *Playground {
	return &Playground{
		translators: map[string]func() locales.Translator{
			"de":    de.New,
			"de_DE": de_DE.New,
			"en":    en.New,
			"en_GB": en_GB.New,
			"en_US": en_US.New,
			"es":    es.New,
			"es_ES": es_ES.New,
			"fr":    fr.New,
			"fr_FR": fr_FR.New,
			"it":    it.New,
			"it_IT": it_IT.New,
			"pt":    pt.New,
			"pt_BR": pt_BR.New,
			"pt_PT": pt_PT.New,
		},
	}
}

// Name identifies the provider.
func (p *Playground) Name() string {
	return ProviderPlayground
}

// DecimalSymbol returns the decimal separator of the locale.
func (p *Playground) DecimalSymbol(locale string) (string, error) {
	symbols, err := p.symbols(locale)
	if err != nil {
		return "", err
	}

	return symbols.decimal, nil
}

// GroupSymbol returns the digit group separator of the locale.
func (p *Playground) GroupSymbol(locale string) (string, error) {
	symbols, err := p.symbols(locale)
	if err != nil {
		return "", err
	}

	return symbols.group, nil
}

// symbols renders the sample with the locale's translator, falling back to the bare language.
func (p *Playground) symbols(locale string) (separators, error) {
	constructor, ok := p.translators[locale]
	if !ok {
		lang, _, _ := strings.Cut(locale, "_")
		if constructor, ok = p.translators[lang]; !ok {
			return separators{}, fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
		}
	}

	return parseSample(constructor().FmtNumber(sample, 1))
}

// Text reads symbols from golang.org/x/text number formatting.
type Text struct{}

// NewText creates the x/text backed provider.
func NewText() *Text {
	return new(Text)
}

// Name identifies the provider.
func (*Text) Name() string {
	return ProviderText
}

// DecimalSymbol returns the decimal separator of the locale.
func (t *Text) DecimalSymbol(locale string) (string, error) {
	symbols, err := t.symbols(locale)
	if err != nil {
		return "", err
	}

	return symbols.decimal, nil
}

// GroupSymbol returns the digit group separator of the locale.
func (t *Text) GroupSymbol(locale string) (string, error) {
	symbols, err := t.symbols(locale)
	if err != nil {
		return "", err
	}

	return symbols.group, nil
}

// symbols renders the sample with an x/text printer for the locale.
func (*Text) symbols(locale string) (separators, error) {
	tag, err := translation.Tag(locale)
	if err != nil {
		return separators{}, fmt.Errorf("%w: %w", ErrUnknownLocale, err)
	}

	return parseSample(message.NewPrinter(tag).Sprintf("%.1f", sample))
}

// separators are the symbols read back from a rendered sample.
type separators struct {
	decimal string
	group   string
}

// parseSample extracts the separators from a rendering of sample: the last run of
// non-digits between digits is the decimal separator, the first one is the group separator.
// Text before the first digit or after the last one, such as a sign, a currency symbol or a
// direction mark, is ignored. Any Unicode decimal digits are accepted. The rendering must keep
// every digit of sample and use one group separator throughout; anything else, such as
// scientific notation or mixed separators, is rejected rather than guessed.
func parseSample(rendered string) (separators, error) {
	var (
		runs    []string
		current strings.Builder
		seen    bool
		digits  int
	)

	for _, r := range rendered {
		if unicode.IsDigit(r) {
			if seen && current.Len() > 0 {
				runs = append(runs, current.String())
			}

			current.Reset()

			seen = true
			digits++

			continue
		}

		if seen {
			current.WriteRune(r)
		}
	}

	if len(runs) == 0 {
		return separators{}, fmt.Errorf("%w: %q", errNoDecimal, rendered)
	}

	if digits != sampleDigits {
		return separators{}, fmt.Errorf("%w: %q has %d digits", errUnexpectedSample, rendered, digits)
	}

	result := separators{
		decimal: runs[len(runs)-1],
	}

	if len(runs) > 1 {
		result.group = runs[0]
	}

	for _, run := range runs[:len(runs)-1] {
		if run != result.group {
			return separators{}, fmt.Errorf("%w: %q mixes %q and %q", errUnexpectedSample, rendered, result.group, run)
		}
	}

	return result, nil
}
