package sitetrans

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider returns canned translations and brackets anything unknown.
type mockProvider struct {
	translations map[string]string
	callCount    int
	lastTexts    []string
	requests     []TranslateRequest
	drop         bool // return one result too few
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		translations: map[string]string{
			"Hello":                "Bonjour",
			"World":                "Monde",
			"Hello World":          "Bonjour le monde",
			"Welcome to our site.": "Bienvenue sur notre site.",
		},
	}
}

func (m *mockProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	m.callCount++
	m.lastTexts = req.Texts
	m.requests = append(m.requests, req)

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = "[" + text + "]"
		}
	}
	if m.drop && len(results) > 0 {
		results = results[:len(results)-1]
	}
	return results, nil
}

func (m *mockProvider) Name() string { return "mock" }

type mockCache struct {
	data map[string]string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]string)}
}

func (c *mockCache) Get(key string) (string, bool) {
	val, ok := c.data[key]
	return val, ok
}

func (c *mockCache) Set(key string, value string) error {
	c.data[key] = value
	return nil
}

// mockHTMLProcessor treats every run of text between '>' and '<' as a node.
type mockHTMLProcessor struct{}

func (p *mockHTMLProcessor) Extract(content string) (interface{}, []TextNode, error) {
	var nodes []TextNode
	for i, part := range strings.Split(content, ">") {
		idx := strings.Index(part, "<")
		if idx <= 0 {
			continue
		}
		text := strings.TrimSpace(part[:idx])
		if text == "" {
			continue
		}
		nodes = append(nodes, TextNode{
			ID:       "node-" + string(rune('a'+i)),
			Text:     text,
			Hash:     HashText(text),
			NodeType: NodeTypeText,
		})
	}
	return content, nodes, nil
}

func (p *mockHTMLProcessor) Apply(parsed interface{}, nodes []TextNode, translations map[string]string) (string, error) {
	result := parsed.(string)
	for _, node := range nodes {
		if translated, ok := translations[node.Hash]; ok {
			result = strings.ReplaceAll(result, ">"+node.Text+"<", ">"+translated+"<")
		}
	}
	return result, nil
}

func (p *mockHTMLProcessor) ContentType() string {
	return "html"
}

func TestTranslator_BasicTranslation(t *testing.T) {
	provider := newMockProvider()
	translator := NewTranslator("fr", provider, WithProcessor(&mockHTMLProcessor{}))

	result, err := translator.Process(context.Background(), "<p>Hello</p>", "html")
	require.NoError(t, err)

	assert.Equal(t, "<p>Bonjour</p>", result.Content)
	assert.Equal(t, 1, result.TranslatedCount)
	assert.Equal(t, "mock", result.Provider)
	assert.Equal(t, 1, result.Batches)
}

func TestTranslator_CacheHit(t *testing.T) {
	provider := newMockProvider()
	cache := newMockCache()

	translator := NewTranslator("fr", provider,
		WithCache(cache),
		WithProcessor(&mockHTMLProcessor{}),
	)

	result1, err := translator.Process(context.Background(), "<p>Hello</p>", "html")
	require.NoError(t, err)
	assert.Equal(t, 1, result1.TranslatedCount)
	assert.Equal(t, 0, result1.CachedCount)
	assert.Contains(t, cache.data, CacheKey(HashText("Hello"), "fr"), "translation should be stored under its cache key")

	result2, err := translator.Process(context.Background(), "<p>Hello</p>", "html")
	require.NoError(t, err)
	assert.Equal(t, 0, result2.TranslatedCount)
	assert.Equal(t, 1, result2.CachedCount)
	assert.Equal(t, 1, provider.callCount, "provider should be called once")
}

func TestTranslator_SourceEqualsTarget(t *testing.T) {
	provider := newMockProvider()
	translator := NewTranslator("en_US", provider,
		WithSourceLang("en"),
		WithProcessor(&mockHTMLProcessor{}),
	)

	result, err := translator.Process(context.Background(), "<p>Hello</p>", "html")
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello</p>", result.Content)
	assert.Zero(t, provider.callCount, "provider should not be called when source==target")
	assert.Equal(t, "mock", result.Provider)
}

func TestTranslator_SourceEqualsTarget_StillLocalized(t *testing.T) {
	provider := newMockProvider()
	translator := NewTranslator("en", provider,
		WithSourceLang("en_US"),
		WithProcessor(&mockHTMLProcessor{}),
		WithLocalization(LocalizeOptions{
			SetLang:      true,
			RewriteLinks: true,
			BodyInject:   []string{`<footer id="switcher"></footer>`},
		}),
	)

	page := `<html><head></head><body><a href="about.html">Hello</a></body></html>`
	result, err := translator.Process(context.Background(), page, "html")
	require.NoError(t, err)

	assert.Zero(t, provider.callCount)
	assert.Contains(t, result.Content, `<html lang="en" dir="ltr">`)
	assert.Contains(t, result.Content, `<a href="about-en.html">Hello</a>`)
	assert.Contains(t, result.Content, `<footer id="switcher"></footer>`)
}

func TestTranslator_Deduplication(t *testing.T) {
	provider := newMockProvider()
	translator := NewTranslator("fr", provider, WithProcessor(&mockHTMLProcessor{}))

	result, err := translator.Process(context.Background(), "<p>Hello</p><p>Hello</p><p>Hello</p>", "html")
	require.NoError(t, err)
	assert.Len(t, provider.lastTexts, 1, "provider should receive 1 unique text")
	assert.Equal(t, 3, result.TotalNodes)
	assert.Equal(t, 3, strings.Count(result.Content, "Bonjour"), "every occurrence should be translated")
}

func TestTranslator_Batching(t *testing.T) {
	provider := newMockProvider()
	translator := NewTranslator("fr", provider,
		WithProcessor(&mockHTMLProcessor{}),
		WithBatchLimits(BatchLimits{MaxTexts: 2}),
	)

	html := "<p>one</p><p>two</p><p>three</p><p>four</p><p>five</p>"
	result, err := translator.Process(context.Background(), html, "html")
	require.NoError(t, err)

	assert.Equal(t, 3, provider.callCount)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, []string{"one", "two"}, provider.requests[0].Texts, "first batch keeps document order")
	assert.Contains(t, result.Content, "[five]", "last batch applied")
}

func TestTranslator_CountMismatch(t *testing.T) {
	provider := newMockProvider()
	provider.drop = true
	translator := NewTranslator("fr", provider, WithProcessor(&mockHTMLProcessor{}))

	_, err := translator.Process(context.Background(), "<p>Hello</p><p>World</p>", "html")

	var mismatch *CountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Expected)
	assert.Equal(t, 1, mismatch.Got)
	assert.Equal(t, KindProvider, ErrorKind(err))
}

func TestTranslator_EmptyContent(t *testing.T) {
	provider := newMockProvider()
	translator := NewTranslator("fr", provider, WithProcessor(&mockHTMLProcessor{}))

	result, err := translator.Process(context.Background(), "<div></div>", "html")
	require.NoError(t, err)
	assert.Zero(t, result.TotalNodes)
	assert.Zero(t, provider.callCount, "provider should not be called for empty content")
}

func TestTranslator_NoProcessor(t *testing.T) {
	translator := NewTranslator("fr", newMockProvider())

	_, err := translator.Process(context.Background(), "<p>Hello</p>", "html")

	var procErr *ProcessorError
	assert.ErrorAs(t, err, &procErr)
}

func TestTranslator_RTLLanguage(t *testing.T) {
	provider := newMockProvider()
	provider.translations["Hello"] = "مرحبا"

	translator := NewTranslator("ar_SA", provider, WithProcessor(&mockHTMLProcessor{}))

	result, err := translator.Process(context.Background(), "<html><body><p>Hello</p></body></html>", "html")
	require.NoError(t, err)
	assert.Contains(t, result.Content, `dir="rtl"`)
	assert.Contains(t, result.Content, `lang="ar-SA"`)
}

func TestTranslator_Localization(t *testing.T) {
	translator := NewTranslator("fr", newMockProvider(),
		WithProcessor(&mockHTMLProcessor{}),
		WithLocalization(LocalizeOptions{
			RewriteLinks: true,
			HeadInject:   []string{`<link rel="alternate" hreflang="en" href="index.html"/>`},
		}),
	)

	html := `<html><head></head><body><a href="about.html#team">Hello</a><a href="https://x.org/a.html">World</a></body></html>`
	result, err := translator.Process(context.Background(), html, "html")
	require.NoError(t, err)

	assert.Contains(t, result.Content, `href="about-fr.html#team"`, "relative link rewritten")
	assert.Contains(t, result.Content, `href="https://x.org/a.html"`, "absolute link kept")
	assert.Contains(t, result.Content, `hreflang="en"`, "head snippet injected")
	assert.NotContains(t, result.Content, `lang="fr"`, "SetLang is off")
}

func TestTranslator_TranslateMarkup(t *testing.T) {
	provider := newMockProvider()
	translator := NewTranslator("fr", provider, WithProcessor(&mockHTMLProcessor{}))

	result, err := translator.TranslateMarkup(context.Background(), "<html><body><p>Hello</p></body></html>", "de")
	require.NoError(t, err)
	assert.Equal(t, "de", provider.requests[0].TargetLang)
	assert.Contains(t, result.Content, `lang="de"`)
	assert.Equal(t, "fr", translator.TargetLang(), "TranslateMarkup must not change the translator's own target")
}

func TestTranslator_Options(t *testing.T) {
	translator := NewTranslator("fr", newMockProvider(),
		WithSourceLang("en_US"),
		WithCache(newMockCache()),
		WithExcludedTerms([]string{"API", "SDK"}),
		WithContext("Technical documentation"),
		WithGlossary(map[string]string{"cart": "panier"}),
		WithStyle(StyleTechnical),
	)

	assert.Equal(t, "en_US", translator.SourceLang())
	assert.Equal(t, "fr", translator.TargetLang())
	assert.Equal(t, []string{"API", "SDK"}, translator.ExcludedTerms())
	assert.Equal(t, "panier", translator.Glossary()["cart"])
	assert.Equal(t, StyleTechnical, translator.Style())
	assert.Equal(t, "mock", translator.ProviderName())
}

func TestTranslator_IsSourceLang(t *testing.T) {
	tests := []struct {
		source   string
		target   string
		expected bool
	}{
		{"en", "en_US", true},
		{"en_US", "en-GB", true},
		{"en", "fr", false},
		{"en_US", "es_MX", false},
	}

	for _, tt := range tests {
		translator := NewTranslator(tt.target, newMockProvider(), WithSourceLang(tt.source))
		assert.Equal(t, tt.expected, translator.isSourceLang(), "source=%q target=%q", tt.source, tt.target)
	}
}

func TestSplitBatches(t *testing.T) {
	mk := func(texts ...string) []TextNode {
		nodes := make([]TextNode, len(texts))
		for i, text := range texts {
			nodes[i] = TextNode{Text: text, Hash: HashText(text)}
		}
		return nodes
	}

	tests := []struct {
		name   string
		nodes  []TextNode
		limits BatchLimits
		sizes  []int
	}{
		{"empty", nil, BatchLimits{}, nil},
		{"by count", mk("a", "b", "c", "d", "e"), BatchLimits{MaxTexts: 2}, []int{2, 2, 1}},
		{"by chars", mk("aaaa", "bbbb", "cc"), BatchLimits{MaxChars: 6}, []int{1, 2}},
		{"oversized text stands alone", mk("a", strings.Repeat("x", 20), "b"), BatchLimits{MaxChars: 5}, []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sizes []int
			for _, chunk := range SplitBatches(tt.nodes, tt.limits) {
				sizes = append(sizes, len(chunk))
			}
			assert.Equal(t, tt.sizes, sizes)
		})
	}
}
