package sitetrans_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/ZaguanLabs/sitetrans/cache"
	"github.com/ZaguanLabs/sitetrans/processor"
	"github.com/ZaguanLabs/sitetrans/provider"
)

const benchPage = `<!DOCTYPE html>
<html lang="en">
<head><title>Test Page</title><meta name="description" content="A page"></head>
<body>
	<nav><a href="index.html">Home</a><a href="about.html">About</a><a href="https://example.com">Partner</a></nav>
	<main>
		<h1>Welcome to Our Site</h1>
		<img src="hero.png" alt="A sunny beach" title="Beach">
		<p>This is a paragraph with some text.</p>
		<p>Another paragraph here.</p>
		<ul>
			<li>Item one</li>
			<li>Item two</li>
			<li>Item three</li>
		</ul>
		<pre>code stays</pre>
	</main>
	<footer><p>Copyright 2026</p></footer>
</body>
</html>`

func BenchmarkHashContent(b *testing.B) {
	data := []byte(benchPage)
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		sitetrans.HashContent(data)
	}
}

func BenchmarkCacheKey(b *testing.B) {
	hash := sitetrans.HashText("Hello World")
	for i := 0; i < b.N; i++ {
		sitetrans.CacheKey(hash, "fr")
	}
}

func BenchmarkInMemoryCache_Get(b *testing.B) {
	c := cache.NewInMemoryCache(time.Hour)
	_ = c.Set("test-key", "test-value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("test-key")
	}
}

func BenchmarkHTMLProcessor_Extract(b *testing.B) {
	proc := processor.NewHTMLProcessor()
	b.SetBytes(int64(len(benchPage)))
	for i := 0; i < b.N; i++ {
		_, _, _ = proc.Extract(benchPage)
	}
}

func BenchmarkTranslator_Page_Cached(b *testing.B) {
	translator := sitetrans.NewTranslator("fr", provider.NewMockProvider(),
		sitetrans.WithCache(cache.NewInMemoryCache(0)),
		sitetrans.WithProcessor(processor.NewHTMLProcessor()),
	)
	if _, err := translator.ProcessHTML(context.Background(), benchPage); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = translator.ProcessHTML(context.Background(), benchPage)
	}
}

func BenchmarkTranslator_Page_Uncached(b *testing.B) {
	proc := processor.NewHTMLProcessor()
	for i := 0; i < b.N; i++ {
		translator := sitetrans.NewTranslator("fr", provider.NewMockProvider(), sitetrans.WithProcessor(proc))
		_, _ = translator.ProcessHTML(context.Background(), benchPage)
	}
}

func BenchmarkTranslator_LargePageBatched(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 500; i++ {
		sb.WriteString("<p>Paragraph number ")
		sb.WriteString(strings.Repeat("x", i%40))
		sb.WriteString("</p>")
	}
	sb.WriteString("</body></html>")
	page := sb.String()
	proc := processor.NewHTMLProcessor()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		translator := sitetrans.NewTranslator("de", provider.NewMockProvider(),
			sitetrans.WithProcessor(proc),
			sitetrans.WithBatchLimits(sitetrans.BatchLimits{MaxTexts: 50}),
		)
		_, _ = translator.ProcessHTML(context.Background(), page)
	}
}

func BenchmarkLocalizeHref(b *testing.B) {
	hrefs := []string{"about.html", "blog/post.html#top", "https://example.com/x.html", "mailto:a@b.c"}
	for i := 0; i < b.N; i++ {
		sitetrans.LocalizeHref(hrefs[i%len(hrefs)], "fr")
	}
}
