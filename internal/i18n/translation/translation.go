package translation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// DefaultLanguage is active until another language is overridden.
const DefaultLanguage = "en-us"

// Context stores the currently active language code.
type Context struct {
	// active is the lower-case language code, e.g. "pt-br".
	active string
	// mu protects active.
	mu sync.RWMutex
}

// errEmptyLanguage is returned when an empty language code is activated.
var errEmptyLanguage = errors.New("language code is empty")

// NewContext creates a context with the given default language.
func NewContext(defaultLanguage string) *Context {
	return &Context{
		active: strings.Clone(strings.ToLower(strings.TrimSpace(defaultLanguage))),
	}
}

// Active returns the active language code.
func (c *Context) Active() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.active
}

// Override activates languageCode while fn runs and restores the previous language
// afterwards, including when fn panics.
func (c *Context) Override(languageCode string, fn func() error) error {
	// The code outlives the call as a cache key, so it must not alias caller memory.
	languageCode = strings.Clone(strings.ToLower(strings.TrimSpace(languageCode)))
	if languageCode == "" {
		return errEmptyLanguage
	}

	c.mu.Lock()
	previous := c.active
	c.active = languageCode
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.active = previous
		c.mu.Unlock()
	}()

	return fn()
}

// ToLocale turns a language code into a locale name: "en-us" -> "en_US",
// "sr-latn" -> "sr_Latn", "pt" -> "pt".
func ToLocale(languageCode string) string {
	lang, country, found := strings.Cut(languageCode, "-")
	if !found {
		lang, country, found = strings.Cut(languageCode, "_")
	}

	lang = strings.ToLower(lang)
	if !found {
		return lang
	}

	// A script subtag has four letters, a region has two or three.
	region, rest, _ := strings.Cut(country, "-")
	if len(region) > 2 {
		region = strings.ToUpper(region[:1]) + strings.ToLower(region[1:])
	} else {
		region = strings.ToUpper(region)
	}

	if rest != "" {
		region += "-" + rest
	}

	return lang + "_" + region
}

// Candidates returns the locale names to try for a language code, most specific first:
// "pt-br" -> ["pt_BR", "pt"].
func Candidates(languageCode string) []string {
	locale := ToLocale(languageCode)

	lang, _, found := strings.Cut(locale, "_")
	if !found {
		return []string{locale}
	}

	return []string{locale, lang}
}

// Tag parses a language code into a BCP 47 tag.
func Tag(languageCode string) (language.Tag, error) {
	tag, err := language.Parse(strings.ReplaceAll(languageCode, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("parse language %q: %w", languageCode, err)
	}

	return tag, nil
}
