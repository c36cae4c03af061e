package translation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var errCallback = errors.New("callback failed")

// TestToLocale covers region and script subtags.
func TestToLocale(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"en-us":      "en_US",
		"pt-br":      "pt_BR",
		"PT-BR":      "pt_BR",
		"pt_br":      "pt_BR",
		"en":         "en",
		"sr-latn":    "sr_Latn",
		"sr-latn-rs": "sr_Latn-rs",
	}
	for in, want := range cases {
		require.Equal(t, want, ToLocale(in), in)
	}
}

// TestCandidates lists the specific locale first and the bare language second.
func TestCandidates(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"pt_BR", "pt"}, Candidates("pt-br"))
	require.Equal(t, []string{"de"}, Candidates("de"))
}

// TestOverride_RestoresPrevious checks scoped activation on success, error and panic.
func TestOverride_RestoresPrevious(t *testing.T) {
	t.Parallel()

	c := NewContext("en-us")

	err := c.Override("pt-BR", func() error {
		require.Equal(t, "pt-br", c.Active())

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "en-us", c.Active())

	err = c.Override("de", func() error { return errCallback })
	require.ErrorIs(t, err, errCallback)
	require.Equal(t, "en-us", c.Active())

	require.Panics(t, func() {
		_ = c.Override("fr", func() error { panic("boom") })
	})
	require.Equal(t, "en-us", c.Active())

	require.Error(t, c.Override(" ", func() error { return nil }))
}

// TestTag parses both separator styles.
func TestTag(t *testing.T) {
	t.Parallel()

	tag, err := Tag("pt_BR")
	require.NoError(t, err)
	require.Equal(t, language.BrazilianPortuguese, tag)

	_, err = Tag("!!")
	require.Error(t, err)
}
