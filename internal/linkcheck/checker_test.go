package linkcheck

import (
	"strings"
	"testing"

	"git.home.luguber.info/inful/sitepub/internal/site"
)

func TestExtractLinks(t *testing.T) {
	doc := `<html><body>
		<a href="/guides/testing">guide</a>
		<a href="https://example.com/external">ext</a>
		<img src="/assets/logo.png">
		<link href="/style.css" rel="stylesheet">
		<a href="#section">fragment</a>
	</body></html>`

	links, err := ExtractLinks(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ExtractLinks failed: %v", err)
	}
	if len(links) != 5 {
		t.Fatalf("expected 5 links, got %d: %+v", len(links), links)
	}
}

func TestIsInternal(t *testing.T) {
	cases := map[string]bool{
		"/guides/testing":         true,
		"../sibling":              true,
		"page":                    true,
		"https://example.com":     false,
		"//cdn.example.com/x.js":  false,
		"mailto:docs@example.com": false,
		"#anchor":                 false,
		"":                        false,
	}
	for url, want := range cases {
		if got := IsInternal(url); got != want {
			t.Fatalf("IsInternal(%q) = %v, want %v", url, got, want)
		}
	}
}

func TestCheckFindsBrokenLinks(t *testing.T) {
	tree := site.NewTree()
	tree.Add("index.html", []byte(`<a href="/guides/testing">ok</a> <a href="/missing">bad</a>`))
	tree.Add("guides/testing/index.html", []byte(`<a href="/">home</a>`))

	broken, err := Check(tree)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if len(broken) != 1 {
		t.Fatalf("expected 1 broken link, got %d: %+v", len(broken), broken)
	}
	if broken[0].URL != "/missing" || broken[0].Resolved != "missing/index.html" {
		t.Fatalf("wrong broken link: %+v", broken[0])
	}
}

// TestCheckUsesEdgeRewriteRule pins that extensionless links are verified
// against the index document the edge would actually fetch.
func TestCheckUsesEdgeRewriteRule(t *testing.T) {
	tree := site.NewTree()
	tree.Add("index.html", []byte(`<a href="/guides/testing">g</a>`))
	tree.Add("guides/testing/index.html", []byte(`ok`))

	broken, err := Check(tree)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if len(broken) != 0 {
		t.Fatalf("expected no broken links, got %+v", broken)
	}
}

func TestCheckRelativeLinks(t *testing.T) {
	tree := site.NewTree()
	tree.Add("guides/index.html", []byte(`<a href="testing/">rel</a> <img src="../assets/logo.png">`))
	tree.Add("guides/testing/index.html", []byte(`ok`))
	tree.Add("assets/logo.png", []byte("png"))

	broken, err := Check(tree)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if len(broken) != 0 {
		t.Fatalf("expected no broken links, got %+v", broken)
	}
}

func TestCheckExternalLinksIgnored(t *testing.T) {
	tree := site.NewTree()
	tree.Add("index.html", []byte(`<a href="https://definitely-absent.example.com/page">x</a>`))

	broken, err := Check(tree)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if len(broken) != 0 {
		t.Fatalf("external links must not be checked: %+v", broken)
	}
}
