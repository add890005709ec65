package linkcheck

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/sitepub/internal/resolver"
	"git.home.luguber.info/inful/sitepub/internal/site"
)

// BrokenLink is an internal link whose resolved object key is absent from
// the rendered tree.
type BrokenLink struct {
	SourceKey string // document containing the link
	URL       string // link as written
	Resolved  string // object key the edge would fetch
}

func (b BrokenLink) String() string {
	return fmt.Sprintf("%s -> %s (resolved %s)", b.SourceKey, b.URL, b.Resolved)
}

// Check walks every HTML document in the tree, extracts internal links and
// resolves each through the edge rewrite rule against the tree's key set.
// External links are not fetched; this is an origin-consistency check, not
// a crawler.
func Check(tree *site.Tree) ([]BrokenLink, error) {
	var broken []BrokenLink
	for _, f := range tree.Files() {
		if !strings.HasSuffix(f.Path, ".html") {
			continue
		}
		links, err := ExtractLinks(bytes.NewReader(f.Data))
		if err != nil {
			return nil, fmt.Errorf("extract links from %s: %w", f.Path, err)
		}
		for _, l := range links {
			if !IsInternal(l.URL) {
				continue
			}
			key, ok := resolveKey(f.Path, l.URL)
			if !ok {
				continue
			}
			if tree.Get(key) == nil {
				broken = append(broken, BrokenLink{SourceKey: f.Path, URL: l.URL, Resolved: key})
			}
		}
	}
	return broken, nil
}

// resolveKey turns a link written in sourceKey's document into the object
// key the edge would fetch: relative links are resolved against the source
// document's directory, then the directory-index rewrite is applied.
func resolveKey(sourceKey, link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	p := u.Path
	if p == "" {
		return "", false
	}
	if !strings.HasPrefix(p, "/") {
		p = path.Join("/", path.Dir("/"+sourceKey), p)
		if strings.HasSuffix(link, "/") && !strings.HasSuffix(p, "/") {
			p += "/"
		}
	}
	return strings.TrimPrefix(resolver.Resolve(p), "/"), true
}
