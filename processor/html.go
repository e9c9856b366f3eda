// Package processor extracts translatable text from page markup and writes
// translations back without disturbing the surrounding structure.
package processor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ZaguanLabs/sitetrans"
	"golang.org/x/net/html"
)

// HTMLProcessor extracts and applies translations to HTML pages. Text nodes
// and the values of sitetrans.TranslatableAttributes are translated; tags,
// attribute names and every other attribute value are left untouched.
type HTMLProcessor struct {
	ignoredTags map[string]bool
	attributes  map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: sitetrans.IgnoredTags,
		attributes:  sitetrans.TranslatableAttributes,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
		attributes:  sitetrans.TranslatableAttributes,
	}
}

// WithoutAttributes disables attribute translation.
func (p *HTMLProcessor) WithoutAttributes() *HTMLProcessor {
	cp := *p
	cp.attributes = map[string]bool{}
	return &cp
}

// parsedHTML holds the parsed page between Extract and Apply.
type parsedHTML struct {
	doc *sitetrans.Markup
}

// skip reports whether an element and its subtree must stay untranslated.
func (p *HTMLProcessor) skip(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if p.ignoredTags[strings.ToLower(n.Data)] {
		return true
	}
	for _, attr := range n.Attr {
		switch {
		case attr.Key == "data-no-translate":
			return true
		case attr.Key == "translate" && strings.EqualFold(attr.Val, "no"):
			return true
		}
	}
	return false
}

// visit walks the translatable part of the tree in document order. onText
// receives text nodes, onAttr receives translatable attributes by index.
func (p *HTMLProcessor) visit(n *html.Node, onText func(*html.Node), onAttr func(*html.Node, int)) {
	if p.skip(n) {
		return
	}

	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			onText(n)
		}
	case html.ElementNode:
		for i, attr := range n.Attr {
			if attr.Namespace == "" && p.attributes[strings.ToLower(attr.Key)] && strings.TrimSpace(attr.Val) != "" {
				onAttr(n, i)
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.visit(c, onText, onAttr)
	}
}

// Extract parses HTML and returns one TextNode per distinct translatable
// string, in document order.
func (p *HTMLProcessor) Extract(content string) (interface{}, []sitetrans.TextNode, error) {
	doc, err := sitetrans.ParseMarkup(content)
	if err != nil {
		return nil, nil, &sitetrans.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	var nodes []sitetrans.TextNode
	seen := make(map[string]bool)

	add := func(text, nodeType, context string, meta map[string]string) {
		trimmed := strings.TrimSpace(text)
		hash := sitetrans.HashText(trimmed)
		if seen[hash] {
			return
		}
		seen[hash] = true
		nodes = append(nodes, sitetrans.TextNode{
			ID:       fmt.Sprintf("node-%d", len(nodes)),
			Text:     trimmed,
			Hash:     hash,
			NodeType: nodeType,
			Context:  context,
			Metadata: meta,
		})
	}

	onText := func(n *html.Node) {
		meta := map[string]string{}
		if n.Parent != nil {
			meta["parent_tag"] = n.Parent.Data
		}
		add(n.Data, sitetrans.NodeTypeText, buildContext(n), meta)
	}
	onAttr := func(n *html.Node, i int) {
		attr := n.Attr[i]
		meta := map[string]string{"tag": n.Data, "attribute": attr.Key}
		add(attr.Val, sitetrans.NodeTypeAttribute, fmt.Sprintf("%s attribute of <%s>", attr.Key, n.Data), meta)
	}

	for _, n := range doc.Nodes {
		p.visit(n, onText, onAttr)
	}

	return &parsedHTML{doc: doc}, nodes, nil
}

// Apply writes translations (keyed by text hash) back into the parsed
// document and serializes it.
func (p *HTMLProcessor) Apply(parsed interface{}, nodes []sitetrans.TextNode, translations map[string]string) (string, error) {
	ph, ok := parsed.(*parsedHTML)
	if !ok {
		return "", &sitetrans.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: "html",
		}
	}

	onText := func(n *html.Node) {
		if translated, ok := translations[sitetrans.HashText(n.Data)]; ok {
			n.Data = preserveWhitespace(n.Data, translated)
		}
	}
	onAttr := func(n *html.Node, i int) {
		if translated, ok := translations[sitetrans.HashText(n.Attr[i].Val)]; ok {
			n.Attr[i].Val = preserveWhitespace(n.Attr[i].Val, translated)
		}
	}

	for _, n := range ph.doc.Nodes {
		p.visit(n, onText, onAttr)
	}

	out, err := ph.doc.Render()
	if err != nil {
		return "", &sitetrans.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	return out, nil
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

// buildContext describes where a text node sits so the provider can
// disambiguate short strings ("Home" in a nav vs. in a sentence).
func buildContext(n *html.Node) string {
	parent := n.Parent
	if parent == nil {
		return ""
	}

	var parts []string

	var classAttr, idAttr string
	for _, attr := range parent.Attr {
		switch attr.Key {
		case "class":
			classAttr = attr.Val
		case "id":
			idAttr = attr.Val
		}
	}
	switch {
	case classAttr != "":
		parts = append(parts, fmt.Sprintf("in <%s class=%q>", parent.Data, classAttr))
	case idAttr != "":
		parts = append(parts, fmt.Sprintf("in <%s id=%q>", parent.Data, idAttr))
	default:
		parts = append(parts, fmt.Sprintf("in <%s>", parent.Data))
	}

	var siblings []string
	for sib := parent.FirstChild; sib != nil && len(siblings) < 3; sib = sib.NextSibling {
		if sib == n || sib.Type != html.TextNode {
			continue
		}
		if text := strings.TrimSpace(sib.Data); text != "" && len(text) < 100 {
			siblings = append(siblings, text)
		}
	}
	if len(siblings) > 0 {
		parts = append(parts, "with: "+strings.Join(siblings, ", "))
	}

	var ancestors []string
	for a, i := parent.Parent, 0; a != nil && i < 3; a, i = a.Parent, i+1 {
		if a.Type == html.ElementNode && a.Data != "html" && a.Data != "body" {
			ancestors = append([]string{a.Data}, ancestors...)
		}
	}
	if len(ancestors) > 0 {
		parts = append(parts, "inside: "+strings.Join(ancestors, " > "))
	}

	return strings.Join(parts, " | ")
}

// preserveWhitespace keeps the original leading and trailing whitespace,
// using the same definition of space as strings.TrimSpace (so &nbsp; counts).
func preserveWhitespace(original, translated string) string {
	leading := original[:len(original)-len(strings.TrimLeftFunc(original, unicode.IsSpace))]
	trailing := original[len(strings.TrimRightFunc(original, unicode.IsSpace)):]
	return leading + strings.TrimSpace(translated) + trailing
}

var _ sitetrans.ContentProcessor = (*HTMLProcessor)(nil)
