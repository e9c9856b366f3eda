package sitetrans

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLanguageName(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"es_ES", "Spanish (Spain)"},
		{"ja_JP", "Japanese (Japan)"},
		{"en", "English (United States)"}, // short code expansion
		{"unknown", "unknown"},            // fallback
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetLanguageName(tt.code))
		})
	}
}

func TestGetDirection(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"ar_SA", "rtl"},
		{"he_IL", "rtl"},
		{"fa_IR", "rtl"},
		{"ur_PK", "rtl"},
		{"ar", "rtl"}, // short code
		{"es_ES", "ltr"},
		{"en_US", "ltr"},
		{"ja_JP", "ltr"},
		{"zh_CN", "ltr"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetDirection(tt.code))
		})
	}
}

func TestIsRTL(t *testing.T) {
	assert.True(t, IsRTL("ar_SA"))
	assert.False(t, IsRTL("en_US"))
}

func TestNormalizeLocale(t *testing.T) {
	tests := map[string]string{
		"es-ES": "es_ES",
		"en-US": "en_US",
		"es_ES": "es_ES", // already normalized
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeLocale(in), in)
	}
}

func TestToHTMLLang(t *testing.T) {
	tests := map[string]string{
		"es_ES": "es-ES",
		"en_US": "en-US",
		"es-ES": "es-ES", // already HTML format
	}
	for in, want := range tests {
		assert.Equal(t, want, ToHTMLLang(in), in)
	}
}

func TestBaseLang(t *testing.T) {
	tests := map[string]string{
		"pt_BR": "pt",
		"pt-BR": "pt",
		"FR":    "fr",
		"de":    "de",
		"":      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, BaseLang(in), in)
	}
}

func TestKnownLanguageCodes(t *testing.T) {
	codes := KnownLanguageCodes()

	assert.True(t, sort.StringsAreSorted(codes), "codes should be sorted")
	assert.Subset(t, codes, []string{"fr", "es", "de", "pt_BR", "pt-BR"})
}

func TestGetLocaleClarification(t *testing.T) {
	assert.NotEmpty(t, GetLocaleClarification("es_ES"))
	assert.Equal(t, GetLocaleClarification("es_ES"), GetLocaleClarification("es-ES"), "separator form should not matter")
	assert.Empty(t, GetLocaleClarification("xx"))
}

func TestDeepLTargetCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fr", "FR"},
		{"fr_FR", "FR"},
		{"en", "EN-US"},
		{"en_GB", "EN-GB"},
		{"pt", "PT-BR"},
		{"pt-PT", "PT-PT"},
		{"de-AT", "DE"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeepLTargetCode(tt.input))
		})
	}
}

func TestGetStyleDescription(t *testing.T) {
	assert.NotEqual(t, GetStyleDescription(StyleFormal), GetStyleDescription(StyleCasual))
	assert.Equal(t, GetStyleDescription(StyleNeutral), GetStyleDescription("bogus"), "unknown style falls back to neutral")
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		input string
		want  TranslationStyle
		ok    bool
	}{
		{"", StyleNeutral, true},
		{"Formal", StyleFormal, true},
		{" technical ", StyleTechnical, true},
		{"pirate", "pirate", false},
	}
	for _, tt := range tests {
		got, ok := ParseStyle(tt.input)
		assert.Equal(t, tt.want, got, tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
	}
}
