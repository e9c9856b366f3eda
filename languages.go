package sitetrans

import (
	"sort"
	"strings"
)

// LanguageNames maps locale codes to human-readable names for AI prompts.
var LanguageNames = map[string]string{
	// Tier 1 (High Quality)
	"en_US": "English (United States)",
	"en_GB": "English (United Kingdom)",
	"de_DE": "German (Germany)",
	"es_ES": "Spanish (Spain)",
	"es_MX": "Spanish (Mexico)",
	"fr_FR": "French (France)",
	"it_IT": "Italian (Italy)",
	"ja_JP": "Japanese (Japan)",
	"pt_BR": "Portuguese (Brazil)",
	"pt_PT": "Portuguese (Portugal)",
	"zh_CN": "Chinese (Simplified)",
	"zh_TW": "Chinese (Traditional)",

	// Tier 2 (Good Quality)
	"ar_SA": "Arabic (Saudi Arabia)",
	"bn_BD": "Bengali (Bangladesh)",
	"cs_CZ": "Czech (Czech Republic)",
	"da_DK": "Danish (Denmark)",
	"el_GR": "Greek (Greece)",
	"fi_FI": "Finnish (Finland)",
	"he_IL": "Hebrew (Israel)",
	"hi_IN": "Hindi (India)",
	"hu_HU": "Hungarian (Hungary)",
	"id_ID": "Indonesian (Indonesia)",
	"ko_KR": "Korean (South Korea)",
	"nl_NL": "Dutch (Netherlands)",
	"nb_NO": "Norwegian Bokmål (Norway)",
	"pl_PL": "Polish (Poland)",
	"ro_RO": "Romanian (Romania)",
	"ru_RU": "Russian (Russia)",
	"sv_SE": "Swedish (Sweden)",
	"th_TH": "Thai (Thailand)",
	"tr_TR": "Turkish (Turkey)",
	"uk_UA": "Ukrainian (Ukraine)",
	"vi_VN": "Vietnamese (Vietnam)",

	// Tier 3 (Functional)
	"bg_BG": "Bulgarian (Bulgaria)",
	"ca_ES": "Catalan (Spain)",
	"fa_IR": "Persian (Iran)",
	"hr_HR": "Croatian (Croatia)",
	"lt_LT": "Lithuanian (Lithuania)",
	"lv_LV": "Latvian (Latvia)",
	"ms_MY": "Malay (Malaysia)",
	"sk_SK": "Slovak (Slovakia)",
	"sl_SI": "Slovenian (Slovenia)",
	"sr_RS": "Serbian (Serbia)",
	"sw_KE": "Swahili (Kenya)",
	"tl_PH": "Tagalog (Philippines)",
	"ur_PK": "Urdu (Pakistan)",
}

// ShortCodeToLocale maps short language codes to full locale codes.
var ShortCodeToLocale = map[string]string{
	"en": "en_US",
	"de": "de_DE",
	"es": "es_ES",
	"fr": "fr_FR",
	"it": "it_IT",
	"ja": "ja_JP",
	"pt": "pt_BR",
	"zh": "zh_CN",
	"ko": "ko_KR",
	"ru": "ru_RU",
	"ar": "ar_SA",
	"he": "he_IL",
	"hi": "hi_IN",
	"nl": "nl_NL",
	"pl": "pl_PL",
	"tr": "tr_TR",
	"vi": "vi_VN",
	"sv": "sv_SE",
	"da": "da_DK",
	"fi": "fi_FI",
	"nb": "nb_NO",
	"cs": "cs_CZ",
	"uk": "uk_UA",
	"el": "el_GR",
	"id": "id_ID",
	"ro": "ro_RO",
	"hu": "hu_HU",
	"bg": "bg_BG",
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(langCode string) string {
	if name, ok := LanguageNames[langCode]; ok {
		return name
	}
	// Try expanding short code
	if locale, ok := ShortCodeToLocale[langCode]; ok {
		if name, ok := LanguageNames[locale]; ok {
			return name
		}
	}
	return langCode
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(langCode string) string {
	if RTLLanguages[BaseLang(langCode)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(langCode string) bool {
	return GetDirection(langCode) == "rtl"
}

// NormalizeLocale converts a language code to the standard format (e.g., "es-ES" → "es_ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// ToHTMLLang converts a locale code to HTML lang attribute format (e.g., "es_ES" → "es-ES").
func ToHTMLLang(langCode string) string {
	return strings.ReplaceAll(langCode, "_", "-")
}

// BaseLang extracts the lowercase base language ("pt" from "pt_BR" or "pt-BR").
func BaseLang(langCode string) string {
	lang := strings.ToLower(langCode)
	if idx := strings.IndexAny(lang, "-_"); idx >= 0 {
		lang = lang[:idx]
	}
	return lang
}

// KnownLanguageCodes returns every language code that may appear as an
// output suffix: base codes ("fr") and full locales in both separator
// forms ("pt_BR", "pt-BR"). The result is sorted.
func KnownLanguageCodes() []string {
	seen := make(map[string]bool)
	for short := range ShortCodeToLocale {
		seen[short] = true
	}
	for locale := range LanguageNames {
		seen[BaseLang(locale)] = true
		seen[locale] = true
		seen[ToHTMLLang(locale)] = true
	}

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// localeHints disambiguates locales whose base language has strong regional variants.
var localeHints = map[string]string{
	"es_ES": "Use Castilian Spanish (Spain): vosotros forms and peninsular vocabulary.",
	"es_MX": "Use Mexican Spanish: ustedes forms and Latin American vocabulary.",
	"pt_BR": "Use Brazilian Portuguese spelling and vocabulary.",
	"pt_PT": "Use European Portuguese spelling and vocabulary.",
	"fr_FR": "Use metropolitan French conventions (non-breaking space before : ; ! ?).",
	"zh_CN": "Use Simplified Chinese characters.",
	"zh_TW": "Use Traditional Chinese characters with Taiwan vocabulary.",
	"en_GB": "Use British English spelling.",
	"nb_NO": "Use Norwegian Bokmål, not Nynorsk.",
}

// GetLocaleClarification returns a regional hint for the provider prompt,
// or an empty string when the language has none.
func GetLocaleClarification(langCode string) string {
	code := NormalizeLocale(langCode)
	if hint, ok := localeHints[code]; ok {
		return hint
	}
	if locale, ok := ShortCodeToLocale[code]; ok {
		return localeHints[locale]
	}
	return ""
}

// DeepLTargetCode converts a language code to DeepL's target_lang form.
// DeepL requires a regional variant for English and Portuguese targets.
func DeepLTargetCode(langCode string) string {
	code := strings.ToUpper(ToHTMLLang(NormalizeLocale(langCode)))
	switch code {
	case "EN":
		return "EN-US"
	case "PT":
		return "PT-BR"
	case "EN-US", "EN-GB", "PT-BR", "PT-PT":
		return code
	}
	return strings.ToUpper(BaseLang(langCode))
}
