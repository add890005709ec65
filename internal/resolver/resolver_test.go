package resolver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestResolveTable pins the exact rewrite semantics the CDN relies on.
func TestResolveTable(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/", "/index.html"},
		{"/guides/testing/", "/guides/testing/index.html"},
		{"/guides/testing", "/guides/testing/index.html"},
		{"/assets/logo.png", "/assets/logo.png"},
		{"/style.css", "/style.css"},
		// Dot-anywhere heuristic: versioned directories pass through
		// unchanged even without extension or trailing slash.
		{"/v1.0/guide", "/v1.0/guide"},
		{"/guides/index.html", "/guides/index.html"},
	}
	for _, c := range cases {
		if got := Resolve(c.in); got != c.want {
			t.Fatalf("Resolve(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// TestResolveFixedPoint verifies resolving twice converges after one
// application: the appended index.html introduces a dot, so a second pass
// is the identity.
func TestResolveFixedPoint(t *testing.T) {
	for _, p := range []string{"/", "/guides", "/guides/", "/a/b/c"} {
		once := Resolve(p)
		if twice := Resolve(once); twice != once {
			t.Fatalf("Resolve(Resolve(%q)) = %q, want fixed point %q", p, twice, once)
		}
	}
}

// TestResolveIndexSuffix checks that every dotless input gains exactly one
// "/index.html" suffix, never a double slash.
func TestResolveIndexSuffix(t *testing.T) {
	for _, p := range []string{"/", "/a", "/a/", "/a/b", "/a/b/", "/long/nested/path"} {
		got := Resolve(p)
		if !strings.HasSuffix(got, "/index.html") {
			t.Fatalf("Resolve(%q) = %q, missing /index.html suffix", p, got)
		}
		if strings.Contains(got, "//") {
			t.Fatalf("Resolve(%q) = %q, contains double slash", p, got)
		}
		if !strings.HasPrefix(got, p) && !strings.HasPrefix(got+"/", p) {
			t.Fatalf("Resolve(%q) = %q, input prefix lost", p, got)
		}
	}
}

// TestMiddlewareRewritesOnlyPath ensures the http wrapper rewrites the URL
// path and nothing else.
func TestMiddlewareRewritesOnlyPath(t *testing.T) {
	var seenPath, seenQuery, seenMethod string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		seenQuery = r.URL.RawQuery
		seenMethod = r.Method
	}))

	req := httptest.NewRequest(http.MethodGet, "/guides/testing?lang=en", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seenPath != "/guides/testing/index.html" {
		t.Fatalf("path = %q, want rewritten index key", seenPath)
	}
	if seenQuery != "lang=en" {
		t.Fatalf("query = %q, want untouched", seenQuery)
	}
	if seenMethod != http.MethodGet {
		t.Fatalf("method = %q, want untouched", seenMethod)
	}
}
