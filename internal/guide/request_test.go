package guide

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTrimsAndDefaults(t *testing.T) {
	req, err := Normalize(map[string]any{
		"agency":   "  DFA (Passport) ",
		"action":   " Renew Passport\n",
		"location": " Quezon City ",
	})
	require.NoError(t, err)
	require.Equal(t, "DFA (Passport)", req.Agency)
	require.Equal(t, "Renew Passport", req.Action)
	require.Equal(t, "Quezon City", req.Location)
	require.Equal(t, LanguageTaglish, req.Language)
}

func TestNormalizeNonStringValues(t *testing.T) {
	_, err := Normalize(map[string]any{"agency": 42, "action": "x"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "agency", verr.Field)

	_, err = Normalize(map[string]any{"agency": "SSS", "action": []any{"x"}})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "action", verr.Field)
	require.Equal(t, "Action/Question is required", verr.Message)

	req, err := Normalize(map[string]any{"agency": "SSS", "action": "Salary Loan", "location": true, "language": 7})
	require.NoError(t, err)
	require.Empty(t, req.Location)
	require.Equal(t, LanguageTaglish, req.Language)

	_, err = Normalize(nil)
	require.Error(t, err)
}

func TestNormalizeTruncatesByRune(t *testing.T) {
	req, err := Normalize(map[string]any{
		"agency":   strings.Repeat("ñ", 150),
		"action":   strings.Repeat("a", 600),
		"location": strings.Repeat("b", 99) + "  cde",
	})
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("ñ", MaxAgencyLen), req.Agency)
	require.Len(t, req.Action, MaxActionLen)
	require.Equal(t, strings.Repeat("b", 99), req.Location)
}

func TestNormalizeLanguage(t *testing.T) {
	require.Equal(t, LanguageEnglish, NormalizeLanguage(" English "))
	require.Equal(t, LanguageEnglish, NormalizeLanguage("en"))
	require.Equal(t, LanguageFilipino, NormalizeLanguage("Tagalog"))
	require.Equal(t, LanguageTaglish, NormalizeLanguage(""))
	require.Equal(t, LanguageTaglish, NormalizeLanguage("french"))
}
