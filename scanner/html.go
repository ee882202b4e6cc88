package scanner

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/ghostreader"
	"golang.org/x/net/html"
)

const (
	// KeyAttr marks an element whose content is the translation of its value.
	KeyAttr = "data-i18n"
	// ScopeAttr prefixes the keys of all descendant elements.
	ScopeAttr = "data-i18n-scope"
	// SkipAttr excludes an element and its subtree.
	SkipAttr = "data-no-i18n"
)

// IgnoredTags contains HTML tags whose subtrees are never scanned.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// HTMLScanner collects data-i18n keys from HTML templates.
type HTMLScanner struct {
	ignoredTags map[string]bool
}

// NewHTMLScanner creates an HTML scanner with default ignored tags.
func NewHTMLScanner() *HTMLScanner {
	return &HTMLScanner{ignoredTags: IgnoredTags}
}

// NewHTMLScannerWithIgnoredTags creates an HTML scanner with custom ignored tags.
func NewHTMLScannerWithIgnoredTags(tags []string) *HTMLScanner {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLScanner{ignoredTags: ignored}
}

// Scan parses content and returns the keys in document order.
func (s *HTMLScanner) Scan(name string, content []byte) ([]Key, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ScanError{Message: "failed to parse HTML", Cause: err, File: name}
	}

	var keys []Key

	var walk func(n *html.Node, scope []string)
	walk = func(n *html.Node, scope []string) {
		if n.Type == html.ElementNode {
			if s.ignoredTags[strings.ToLower(n.Data)] {
				return
			}
			if _, ok := attr(n, SkipAttr); ok {
				return
			}
			if v, ok := attr(n, ScopeAttr); ok {
				scope = append(scope[:len(scope):len(scope)], v)
			}
			if v, ok := attr(n, KeyAttr); ok && strings.TrimSpace(v) != "" {
				keys = append(keys, Key{
					Key:     ghostreader.NormalizeKey(scope, strings.TrimSpace(v)),
					Default: strings.TrimSpace(goquery.NewDocumentFromNode(n).Text()),
					File:    name,
					Kind:    s.Kind(),
				})
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, scope)
		}
	}

	for _, n := range doc.Nodes {
		walk(n, nil)
	}

	return keys, nil
}

// Kind returns "html".
func (s *HTMLScanner) Kind() string {
	return "html"
}

// Extensions returns the template extensions handled.
func (s *HTMLScanner) Extensions() []string {
	return []string{".html", ".htm", ".tmpl", ".gohtml"}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Verify HTMLScanner implements Scanner
var _ Scanner = (*HTMLScanner)(nil)
