package sitetrans

import "strings"

var styleDescriptions = map[TranslationStyle]string{
	StyleFormal:    "Use formal, professional language with polite forms of address, suitable for official documents.",
	StyleNeutral:   "Use a neutral, professional tone suitable for general web content.",
	StyleCasual:    "Use casual, conversational language suitable for blogs and social media.",
	StyleMarketing: "Use persuasive, engaging language suitable for promotional content.",
	StyleTechnical: "Use precise, technical language suitable for documentation; keep terminology consistent.",
}

// GetStyleDescription returns the prompt sentence for a style. Unknown or
// empty styles fall back to StyleNeutral.
func GetStyleDescription(style TranslationStyle) string {
	if desc, ok := styleDescriptions[style]; ok {
		return desc
	}
	return styleDescriptions[StyleNeutral]
}

// ParseStyle converts a config value to a TranslationStyle.
func ParseStyle(s string) (TranslationStyle, bool) {
	style := TranslationStyle(strings.ToLower(strings.TrimSpace(s)))
	if style == "" {
		return StyleNeutral, true
	}
	_, ok := styleDescriptions[style]
	return style, ok
}
