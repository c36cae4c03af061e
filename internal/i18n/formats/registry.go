package formats

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/sweetmoney-versioning/internal/i18n/translation"
)

// Format names known to the registry.
const (
	DecimalSeparator     = "DECIMAL_SEPARATOR"
	ThousandSeparator    = "THOUSAND_SEPARATOR"
	NumberGrouping       = "NUMBER_GROUPING"
	UseThousandSeparator = "USE_THOUSAND_SEPARATOR"
)

//go:embed locales.yaml
var embeddedLocales []byte

// ErrUnknownFormat is returned for a format name the registry does not define.
var ErrUnknownFormat = errors.New("unknown format")

// Settings are the global fallbacks used when no locale table defines a format.
type Settings struct {
	DecimalSeparator     string
	ThousandSeparator    string
	NumberGrouping       int
	UseThousandSeparator bool
}

// cacheKey identifies a resolved value.
type cacheKey struct {
	name     string
	language string
}

// Registry resolves format values for the active language.
type Registry struct {
	// translations provides the active language.
	translations *translation.Context
	// defaults maps format names to global values.
	defaults map[string]any
	// locales maps locale names to their format tables.
	locales map[string]map[string]any
	// cache memoises resolved values per language.
	cache map[cacheKey]any
	// mu protects locales and cache.
	mu sync.RWMutex
}

// NewRegistry creates a registry with the embedded locale tables and the given fallbacks.
func NewRegistry(translations *translation.Context, settings Settings) (*Registry, error) {
	r := &Registry{
		translations: translations,
		defaults: map[string]any{
			DecimalSeparator:     settings.DecimalSeparator,
			ThousandSeparator:    settings.ThousandSeparator,
			NumberGrouping:       settings.NumberGrouping,
			UseThousandSeparator: settings.UseThousandSeparator,
		},
		locales: make(map[string]map[string]any),
		cache:   make(map[cacheKey]any),
	}

	if err := r.Merge(embeddedLocales); err != nil {
		return nil, fmt.Errorf("load embedded formats: %w", err)
	}

	return r, nil
}

// MergeFile merges locale tables from a YAML file.
func (r *Registry) MergeFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read formats file: %w", err)
	}

	return r.Merge(data)
}

// Merge merges locale tables from a YAML document; later values win.
func (r *Registry) Merge(data []byte) error {
	var doc map[string]map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal formats: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for locale, values := range doc {
		table, ok := r.locales[locale]
		if !ok {
			table = make(map[string]any, len(values))
			r.locales[locale] = table
		}

		for name, value := range values {
			table[strcase.ToScreamingSnake(name)] = value
		}
	}

	clear(r.cache)

	return nil
}

// Get returns the value of a format for the active language.
// The name may be given in any case style: "decimal_separator" equals "DECIMAL_SEPARATOR".
func (r *Registry) Get(name string) (any, error) {
	name = strcase.ToScreamingSnake(name)

	fallback, known := r.defaults[name]
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}

	key := cacheKey{
		name:     name,
		language: r.translations.Active(),
	}

	r.mu.RLock()
	value, cached := r.cache[key]
	r.mu.RUnlock()

	if cached {
		return value, nil
	}

	value = fallback

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, locale := range translation.Candidates(key.language) {
		if v, ok := r.locales[locale][name]; ok && v != nil {
			value = v

			break
		}
	}

	r.cache[key] = value

	return value, nil
}

// Locales returns the number of locale tables loaded.
func (r *Registry) Locales() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.locales)
}
