package sitetrans

// TranslationStyle controls the tone and formality of translations.
type TranslationStyle string

const (
	// StyleFormal uses formal, professional language suitable for official documents.
	StyleFormal TranslationStyle = "formal"
	// StyleNeutral uses a neutral, professional tone suitable for general content.
	StyleNeutral TranslationStyle = "neutral"
	// StyleCasual uses casual, conversational language suitable for blogs/social media.
	StyleCasual TranslationStyle = "casual"
	// StyleMarketing uses persuasive, engaging language for promotional content.
	StyleMarketing TranslationStyle = "marketing"
	// StyleTechnical uses precise, technical language for documentation.
	StyleTechnical TranslationStyle = "technical"
)

// Node types produced by content processors.
const (
	NodeTypeText      = "html_text"
	NodeTypeAttribute = "html_attr"
)

// TextNode represents a translatable unit of content.
type TextNode struct {
	ID       string            // Position-derived identifier ("node-3")
	Text     string            // Original text content (trimmed)
	Hash     string            // SHA-256 hash of Text
	NodeType string            // NodeTypeText or NodeTypeAttribute
	Context  string            // Disambiguation context for the provider
	Metadata map[string]string // Parent tag, attribute name, etc.
}

// ProcessedContent is the result of a translation operation.
type ProcessedContent struct {
	Content         string // Translated content
	TranslatedCount int    // Number of newly translated items
	CachedCount     int    // Number of cache hits
	TotalNodes      int    // Total translatable nodes found
	Batches         int    // Number of provider requests issued
	Provider        string // Name of the provider chain used
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

// IgnoredTags contains HTML tags whose content should not be translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// TranslatableAttributes lists element attributes whose values are human-readable.
var TranslatableAttributes = map[string]bool{
	"alt":         true,
	"title":       true,
	"placeholder": true,
	"aria-label":  true,
}
