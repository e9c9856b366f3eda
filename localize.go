package sitetrans

import (
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LocalizeOptions controls the HTML rewriting applied after text has been
// translated.
type LocalizeOptions struct {
	SetLang      bool     // Set lang/dir on <html>
	RewriteLinks bool     // Point relative .html links at their translated siblings
	HeadInject   []string // Markup appended to <head>
	BodyInject   []string // Markup appended to <body>
}

// DefaultLocalizeOptions sets the document language and rewrites links.
func DefaultLocalizeOptions() LocalizeOptions {
	return LocalizeOptions{
		SetLang:      true,
		RewriteLinks: true,
	}
}

func (o LocalizeOptions) empty() bool {
	return !o.SetLang && !o.RewriteLinks && len(o.HeadInject) == 0 && len(o.BodyInject) == 0
}

// localizeHTML applies the translator's LocalizeOptions to a document.
func (t *Translator) localizeHTML(html string) (string, error) {
	if t.localize.empty() {
		return html, nil
	}

	doc, err := ParseMarkup(html)
	if err != nil {
		return "", &ProcessorError{Message: "failed to parse translated HTML", Cause: err, ContentType: "html"}
	}

	if t.localize.SetLang {
		htmlTag := doc.Find("html")
		if htmlTag.Length() > 0 {
			htmlTag.SetAttr("lang", ToHTMLLang(t.targetLang))
			htmlTag.SetAttr("dir", GetDirection(t.targetLang))
		}
	}

	if t.localize.RewriteLinks {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			if rewritten, ok := LocalizeHref(href, t.targetLang); ok {
				s.SetAttr("href", rewritten)
			}
		})
	}

	if head := doc.Find("head"); head.Length() > 0 {
		for _, snippet := range t.localize.HeadInject {
			head.AppendHtml(snippet)
		}
	}
	if body := doc.Find("body"); body.Length() > 0 {
		for _, snippet := range t.localize.BodyInject {
			body.AppendHtml(snippet)
		}
	}

	out, err := doc.Render()
	if err != nil {
		return "", &ProcessorError{Message: "failed to serialize HTML", Cause: err, ContentType: "html"}
	}
	return out, nil
}

// LocalizeHref rewrites a relative link to an .html page so it targets the
// page's translation ("about.html#team" -> "about-fr.html#team"). Absolute
// URLs, other file types and links already pointing at a translation are
// left alone; ok reports whether href changed.
func LocalizeHref(href, lang string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "//") || strings.Contains(href, "://") {
		return href, false
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return href, false
		}
	}

	p, suffix := href, ""
	if idx := strings.IndexAny(href, "?#"); idx >= 0 {
		p, suffix = href[:idx], href[idx:]
	}
	if !strings.HasSuffix(strings.ToLower(p), ".html") {
		return href, false
	}

	stem := strings.TrimSuffix(p, path.Ext(p))
	if strings.HasSuffix(strings.ToLower(stem), "-"+strings.ToLower(lang)) {
		return href, false
	}
	return stem + "-" + lang + ".html" + suffix, true
}
