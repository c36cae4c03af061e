package integration

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sweetmoney-versioning/internal/service/checker"
)

// TestChecker_DefaultLanguagesAgree checks the default languages with both CLDR providers.
func TestChecker_DefaultLanguagesAgree(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, nil)

	for _, provider := range []string{"playground", "text"} {
		var out bytes.Buffer

		err := checker.Run(context.Background(), &checker.Options{
			ConfigPath: configPath,
			Provider:   provider,
			Out:        &out,
		})
		require.NoError(t, err, provider)

		report := out.String()
		require.True(t, strings.HasPrefix(report, " Checking Formats...\n"), provider)
		require.Contains(t, report, "Language: en-us", provider)
		require.Contains(t, report, "Language: pt-br", provider)
		require.Equal(t, 2, strings.Count(report, "MATCH: Decimal separators agree."), provider)
		require.NotContains(t, report, "MISMATCH", provider)
	}
}
