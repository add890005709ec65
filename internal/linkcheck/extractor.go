// Package linkcheck verifies that internal links in a rendered site resolve
// to real objects, using the same rewrite rule the edge applies.
package linkcheck

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL       string // The URL or path as written in the document
	Tag       string // HTML tag (a, img, script, link)
	Attribute string // Attribute containing the link (href, src)
}

// linkAttrs maps tags to the attribute that carries their reference.
var linkAttrs = map[string]string{
	"a":      "href",
	"img":    "src",
	"script": "src",
	"link":   "href",
}

// ExtractLinks extracts all links from an HTML reader.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				for _, a := range n.Attr {
					if a.Key == attr && a.Val != "" {
						links = append(links, Link{URL: a.Val, Tag: n.Data, Attribute: attr})
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// IsInternal reports whether a link target is site-internal: absolute paths
// and relative references count, external schemes and fragments do not.
func IsInternal(url string) bool {
	switch {
	case url == "", strings.HasPrefix(url, "#"):
		return false
	case strings.HasPrefix(url, "//"):
		return false
	case strings.Contains(url, "://"):
		return false
	case strings.HasPrefix(url, "mailto:"), strings.HasPrefix(url, "tel:"):
		return false
	}
	return true
}
