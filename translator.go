package sitetrans

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("sitetrans")

// Default batch limits for a single provider request.
const (
	DefaultMaxBatchTexts = 50
	DefaultMaxBatchChars = 8000
)

// Translator is the main translation engine.
type Translator struct {
	targetLang    string
	sourceLang    string
	provider      Provider
	cache         TranslationCache
	excludedTerms []string
	context       string
	glossary      map[string]string
	style         TranslationStyle
	processors    map[string]ContentProcessor
	batch         BatchLimits
	localize      LocalizeOptions
	lookupWorkers int
}

// Provider is the interface for translation backends.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
	// Name identifies the backend in logs and ledger records.
	Name() string
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Texts         []string
	TargetLang    string
	SourceLang    string
	ExcludedTerms []string
	Context       string
	TextContexts  []string
	Glossary      map[string]string
	Style         TranslationStyle
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// ContentProcessor is the interface for content processing.
type ContentProcessor interface {
	Extract(content string) (interface{}, []TextNode, error)
	Apply(parsed interface{}, nodes []TextNode, translations map[string]string) (string, error)
	ContentType() string
}

// MarkupTranslator converts an HTML document to a target language while
// leaving its markup intact.
type MarkupTranslator interface {
	TranslateMarkup(ctx context.Context, html, targetLang string) (*ProcessedContent, error)
}

// BatchLimits bounds the size of a single provider request.
type BatchLimits struct {
	MaxTexts int // Maximum number of texts per request
	MaxChars int // Maximum total characters per request
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang sets the source language.
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithExcludedTerms sets terms that should not be translated.
func WithExcludedTerms(terms []string) TranslatorOption {
	return func(t *Translator) {
		t.excludedTerms = terms
	}
}

// WithContext sets the global translation context.
func WithContext(ctx string) TranslatorOption {
	return func(t *Translator) {
		t.context = ctx
	}
}

// WithGlossary sets preferred translations for specific phrases.
func WithGlossary(glossary map[string]string) TranslatorOption {
	return func(t *Translator) {
		t.glossary = glossary
	}
}

// WithStyle sets the translation style/register.
func WithStyle(style TranslationStyle) TranslatorOption {
	return func(t *Translator) {
		t.style = style
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors[processor.ContentType()] = processor
	}
}

// WithBatchLimits overrides the per-request batch limits. Zero fields keep
// their defaults.
func WithBatchLimits(limits BatchLimits) TranslatorOption {
	return func(t *Translator) {
		if limits.MaxTexts > 0 {
			t.batch.MaxTexts = limits.MaxTexts
		}
		if limits.MaxChars > 0 {
			t.batch.MaxChars = limits.MaxChars
		}
	}
}

// WithLocalization sets the HTML post-processing applied after translation.
func WithLocalization(opts LocalizeOptions) TranslatorOption {
	return func(t *Translator) {
		t.localize = opts
	}
}

// NewTranslator creates a new Translator with the given target language and provider.
func NewTranslator(targetLang string, provider Provider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang: targetLang,
		sourceLang: "en",
		provider:   provider,
		style:      StyleNeutral,
		processors: make(map[string]ContentProcessor),
		batch: BatchLimits{
			MaxTexts: DefaultMaxBatchTexts,
			MaxChars: DefaultMaxBatchChars,
		},
		localize: DefaultLocalizeOptions(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Process translates content of the specified type.
func (t *Translator) Process(ctx context.Context, content string, contentType string) (*ProcessedContent, error) {
	if t.isSourceLang() {
		// Nothing to translate, but the page is still localized like any
		// other output.
		result := &ProcessedContent{Content: content, Provider: t.providerName()}
		if contentType == "html" {
			localized, err := t.localizeHTML(content)
			if err != nil {
				return nil, err
			}
			result.Content = localized
		}
		return result, nil
	}

	processor, ok := t.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	parsed, nodes, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	result := &ProcessedContent{
		Content:    content,
		TotalNodes: len(nodes),
		Provider:   t.providerName(),
	}

	if len(nodes) > 0 {
		translations, stats, err := t.translateBatch(ctx, nodes)
		if err != nil {
			return nil, err
		}
		result.CachedCount = stats.cached
		result.TranslatedCount = stats.translated
		result.Batches = stats.batches

		result.Content, err = processor.Apply(parsed, nodes, translations)
		if err != nil {
			return nil, err
		}
	}

	if contentType == "html" {
		localized, err := t.localizeHTML(result.Content)
		if err != nil {
			return nil, err
		}
		result.Content = localized
	}

	return result, nil
}

// ProcessHTML is a convenience method for processing HTML content.
func (t *Translator) ProcessHTML(ctx context.Context, html string) (*ProcessedContent, error) {
	return t.Process(ctx, html, "html")
}

// TranslateMarkup implements MarkupTranslator. An empty targetLang uses the
// translator's own target language.
func (t *Translator) TranslateMarkup(ctx context.Context, html, targetLang string) (*ProcessedContent, error) {
	if targetLang == "" || targetLang == t.targetLang {
		return t.ProcessHTML(ctx, html)
	}
	clone := *t
	clone.targetLang = targetLang
	return clone.ProcessHTML(ctx, html)
}

type batchStats struct {
	cached     int
	translated int
	batches    int
}

// translateBatch translates nodes, using cache where possible. Cache misses
// are deduplicated and sent in document order, split by the batch limits.
func (t *Translator) translateBatch(ctx context.Context, nodes []TextNode) (map[string]string, batchStats, error) {
	translations, cacheMisses := t.lookupCache(ctx, nodes)
	stats := batchStats{cached: len(translations)}

	if len(cacheMisses) == 0 || t.provider == nil {
		return translations, stats, nil
	}

	for _, chunk := range SplitBatches(cacheMisses, t.batch) {
		texts := make([]string, len(chunk))
		textContexts := make([]string, len(chunk))
		for i, node := range chunk {
			texts[i] = node.Text
			textContexts[i] = node.Context
		}

		results, err := t.provider.Translate(ctx, TranslateRequest{
			Texts:         texts,
			TargetLang:    t.targetLang,
			SourceLang:    t.sourceLang,
			ExcludedTerms: t.excludedTerms,
			Context:       t.context,
			TextContexts:  textContexts,
			Glossary:      t.glossary,
			Style:         t.style,
		})
		if err != nil {
			return nil, stats, err
		}
		if len(results) != len(chunk) {
			return nil, stats, &CountMismatchError{Expected: len(chunk), Got: len(results)}
		}
		stats.batches++

		for i, node := range chunk {
			translations[node.Hash] = results[i]
			if t.cache != nil {
				if err := t.cache.Set(CacheKey(node.Hash, t.targetLang), results[i]); err != nil {
					log.Debugw("cache set failed", "err", err)
				}
			}
			stats.translated++
		}
	}

	log.Debugw("batch translated",
		"lang", t.targetLang,
		"nodes", len(nodes),
		"cached", stats.cached,
		"translated", stats.translated,
		"requests", stats.batches)

	return translations, stats, nil
}

// SplitBatches splits nodes into consecutive chunks that respect limits.
// A single text longer than MaxChars still forms its own chunk.
func SplitBatches(nodes []TextNode, limits BatchLimits) [][]TextNode {
	maxTexts := limits.MaxTexts
	if maxTexts <= 0 {
		maxTexts = DefaultMaxBatchTexts
	}
	maxChars := limits.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxBatchChars
	}

	var chunks [][]TextNode
	var current []TextNode
	chars := 0
	for _, node := range nodes {
		n := len(node.Text)
		if len(current) > 0 && (len(current) >= maxTexts || chars+n > maxChars) {
			chunks = append(chunks, current)
			current = nil
			chars = 0
		}
		current = append(current, node)
		chars += n
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

func (t *Translator) providerName() string {
	if t.provider == nil {
		return ""
	}
	return t.provider.Name()
}

// isSourceLang checks if target matches source (no translation needed).
func (t *Translator) isSourceLang() bool {
	return BaseLang(t.targetLang) == BaseLang(t.sourceLang)
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// ProviderName returns the name of the configured provider chain.
func (t *Translator) ProviderName() string {
	return t.providerName()
}

// IsRTL returns true if the target language uses right-to-left text direction.
func (t *Translator) IsRTL() bool {
	return IsRTL(t.targetLang)
}

// Glossary returns the glossary of preferred translations.
func (t *Translator) Glossary() map[string]string {
	return t.glossary
}

// Style returns the translation style.
func (t *Translator) Style() TranslationStyle {
	return t.style
}

// ExcludedTerms returns the list of excluded terms.
func (t *Translator) ExcludedTerms() []string {
	return t.excludedTerms
}

var _ MarkupTranslator = (*Translator)(nil)
