package sitetrans

import (
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Markup is a parsed page that renders back in the shape it was read in.
// Full documents keep their doctype and <html> wrapper. Fragments such as
// "<p>Hello</p>" are parsed in a <body> context and render without one.
type Markup struct {
	*goquery.Document
	fragment bool
}

// ParseMarkup parses content as a full document when it declares a doctype
// or an <html>, <head> or <body> tag, and as a body fragment otherwise.
func ParseMarkup(content string) (*Markup, error) {
	if isDocument(content) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			return nil, err
		}
		return &Markup{Document: doc}, nil
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return &Markup{Document: goquery.NewDocumentFromNode(body), fragment: true}, nil
}

// Fragment reports whether the markup was parsed without a document wrapper.
func (m *Markup) Fragment() bool {
	return m.fragment
}

// Render serializes the markup.
func (m *Markup) Render() (string, error) {
	if !m.fragment {
		return m.Html()
	}
	var sb strings.Builder
	for c := m.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// isDocument scans the leading tokens for a doctype or a document-level tag.
func isDocument(content string) bool {
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if !errors.Is(z.Err(), io.EOF) {
				return true
			}
			return false
		case html.DoctypeToken:
			return true
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Html, atom.Head, atom.Body:
				return true
			}
		}
	}
}
