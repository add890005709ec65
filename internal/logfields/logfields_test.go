package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
// Key drift would break log ingestion schemas.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Stage", KeyStage, "sync", Stage("sync")},
		{"Bucket", KeyBucket, "docs-site", Bucket("docs-site")},
		{"Distribution", KeyDistribution, "E123", Distribution("E123")},
		{"Key", KeyKey, "guide/index.html", Key("guide/index.html")},
		{"Path", KeyPath, "/tmp/site", Path("/tmp/site")},
		{"Pattern", KeyPattern, "/*", Pattern("/*")},
		{"Project", KeyProject, "hla-compass", Project("hla-compass")},
		{"Source", KeySource, "./docs", Source("./docs")},
		{"URL", KeyURL, "http://example", URL("http://example")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"RemoteAddr", KeyRemoteAddr, "1.2.3.4", RemoteAddr("1.2.3.4")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestErrorField(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("nil error should render empty, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Fatalf("error value mismatch: %q", a.Value.String())
	}
}
