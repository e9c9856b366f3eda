package sitetrans_test

import (
	"context"
	"testing"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/ZaguanLabs/sitetrans/cache"
	"github.com/ZaguanLabs/sitetrans/processor"
	"github.com/ZaguanLabs/sitetrans/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End-to-end translator tests using the real HTML processor, memory and
// provider wrappers.

func newPipeline(lang string, p sitetrans.Provider, opts ...sitetrans.TranslatorOption) *sitetrans.Translator {
	opts = append([]sitetrans.TranslatorOption{sitetrans.WithProcessor(processor.NewHTMLProcessor())}, opts...)
	return sitetrans.NewTranslator(lang, p, opts...)
}

func TestPipeline_Page(t *testing.T) {
	p := provider.NewMockProvider()
	translator := newPipeline("fr", p)

	page := `<!DOCTYPE html>
<html lang="en">
<head><title>Hello</title><style>p { color: red; }</style></head>
<body>
  <nav><a href="index.html">Hello World</a> <a href="https://example.com/x.html">World</a></nav>
  <img src="logo.png" alt="Hello" class="logo">
  <p data-no-translate>Hello</p>
  <pre>Hello</pre>
  <!-- Hello -->
</body>
</html>`

	result, err := translator.ProcessHTML(context.Background(), page)
	require.NoError(t, err)

	for _, want := range []string{
		`<!DOCTYPE html>`,
		`<html lang="fr" dir="ltr">`,
		`<title>Bonjour</title>`,
		`<style>p { color: red; }</style>`,
		`<a href="index-fr.html">Bonjour le monde</a>`,
		`<a href="https://example.com/x.html">Monde</a>`,
		`alt="Bonjour"`,
		`class="logo"`,
		`<p data-no-translate="">Hello</p>`,
		`<pre>Hello</pre>`,
		`<!-- Hello -->`,
	} {
		assert.Contains(t, result.Content, want)
	}

	// "Hello" appears as title text and as alt; it is sent once.
	assert.Equal(t, 3, result.TotalNodes)
	assert.Equal(t, 1, p.CallCount(), "a single provider request")
	assert.Equal(t, "mock", result.Provider)
}

func TestPipeline_FragmentStaysFragment(t *testing.T) {
	translator := newPipeline("fr", provider.NewMockProvider())

	result, err := translator.ProcessHTML(context.Background(), `<p>Hello</p>`)
	require.NoError(t, err)
	assert.Equal(t, `<p>Bonjour</p>`, result.Content)

	result, err = translator.ProcessHTML(context.Background(), `<div class="card"><a href="about.html">World</a></div>`)
	require.NoError(t, err)
	assert.Equal(t, `<div class="card"><a href="about-fr.html">Monde</a></div>`, result.Content)
}

func TestPipeline_NonBreakingSpaces(t *testing.T) {
	translator := newPipeline("fr", provider.NewMockProvider())

	result, err := translator.ProcessHTML(context.Background(), `<p>Price:&nbsp;<b>5</b>&nbsp;Euros</p>`)
	require.NoError(t, err)
	assert.Equal(t, "<p>[fr] Price:\u00a0<b>[fr] 5</b>\u00a0[fr] Euros</p>", result.Content)
}

func TestPipeline_MemoryAcrossPages(t *testing.T) {
	p := provider.NewMockProvider()
	memory := cache.NewInMemoryCache(time.Hour)
	translator := newPipeline("fr", p, sitetrans.WithCache(memory))

	_, err := translator.ProcessHTML(context.Background(), `<p>Hello</p>`)
	require.NoError(t, err)
	result, err := translator.ProcessHTML(context.Background(), `<h1>Hello</h1><p>World</p>`)
	require.NoError(t, err)

	assert.Equal(t, 1, result.CachedCount)
	assert.Equal(t, 1, result.TranslatedCount)
	req := p.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, []string{"World"}, req.Texts, "only the new string is requested")
	assert.Equal(t, 2, memory.Len())
}

func TestPipeline_RTL(t *testing.T) {
	translator := newPipeline("ar", provider.NewMockProvider())

	result, err := translator.ProcessHTML(context.Background(), `<html><body><p>Hello</p></body></html>`)
	require.NoError(t, err)
	assert.Contains(t, result.Content, `<html lang="ar" dir="rtl">`)
}

func TestPipeline_WhitespacePreserved(t *testing.T) {
	translator := newPipeline("fr", provider.NewMockProvider())

	result, err := translator.ProcessHTML(context.Background(), "<p>\n    Hello\n  </p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>\n    Bonjour\n  </p>", result.Content)
}

func TestPipeline_SourceEqualsTarget(t *testing.T) {
	p := provider.NewMockProvider()
	translator := newPipeline("en_GB", p, sitetrans.WithSourceLang("en"))

	page := `<p>Hello</p>`
	result, err := translator.ProcessHTML(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, page, result.Content)
	assert.Zero(t, p.CallCount())

	// A full page is not translated but gets the same localization as any
	// other output.
	result, err = translator.ProcessHTML(context.Background(), `<html><head></head><body><a href="a.html">Hello</a></body></html>`)
	require.NoError(t, err)
	assert.Contains(t, result.Content, `<html lang="en-GB" dir="ltr">`)
	assert.Contains(t, result.Content, `<a href="a-en_GB.html">Hello</a>`)
	assert.Zero(t, p.CallCount())
}

func TestPipeline_RetryThenSucceed(t *testing.T) {
	p := provider.NewMockProvider()
	p.Err = &sitetrans.ProviderError{Message: "rate limited", Retryable: true}
	p.FailTimes = 2

	retrying := sitetrans.NewRetryableProvider(p, sitetrans.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	})
	translator := newPipeline("fr", retrying)

	result, err := translator.ProcessHTML(context.Background(), `<p>Hello</p>`)
	require.NoError(t, err, "success after retries")
	assert.Equal(t, `<p>Bonjour</p>`, result.Content)
	assert.Equal(t, 3, p.CallCount())
}

func TestPipeline_FallbackProvider(t *testing.T) {
	primary := provider.NewMockProvider()
	primary.ProviderName = "primary"
	primary.Err = &sitetrans.ProviderError{Message: "down"}
	secondary := provider.NewMockProvider()
	secondary.ProviderName = "secondary"

	translator := newPipeline("fr", provider.NewFallback(primary, secondary))

	result, err := translator.ProcessHTML(context.Background(), `<p>World</p>`)
	require.NoError(t, err)
	assert.Equal(t, `<p>Monde</p>`, result.Content)
	assert.Equal(t, 1, primary.CallCount())
	assert.Equal(t, 1, secondary.CallCount())
}

func TestPipeline_ProviderFailure(t *testing.T) {
	p := provider.NewMockProvider()
	p.Err = &sitetrans.ProviderError{Message: "quota exceeded"}
	translator := newPipeline("fr", p)

	_, err := translator.ProcessHTML(context.Background(), `<p>Hello</p>`)
	require.Error(t, err)
	assert.Equal(t, sitetrans.KindProvider, sitetrans.ErrorKind(err))
}
