package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := New(CategoryRender, SeverityFatal, "site render failed")
	if got := e.Error(); got != "render (fatal): site render failed" {
		t.Fatalf("unexpected format: %q", got)
	}

	cause := stderrors.New("exit status 255")
	w := Wrap(cause, CategoryStorage, SeverityFatal, "object store sync failed")
	if !strings.Contains(w.Error(), "exit status 255") {
		t.Fatalf("wrapped error must carry the cause verbatim: %q", w.Error())
	}
	if !stderrors.Is(w, cause) {
		t.Fatal("Unwrap chain broken")
	}
}

func TestCategoryAndRetryable(t *testing.T) {
	e := WrapRetryable(stderrors.New("timeout"), CategoryNetwork, SeverityError, "upload failed")
	if !IsRetryable(e) {
		t.Fatal("expected retryable")
	}
	if !IsCategory(e, CategoryNetwork) {
		t.Fatal("expected network category")
	}
	if GetCategory(stderrors.New("plain")) != CategoryInternal {
		t.Fatal("plain errors should map to internal category")
	}
}

func TestConstructors(t *testing.T) {
	pm := ParamMissing("/hla-compass/s3-bucket")
	if pm.Category != CategoryParams || pm.Severity != SeverityFatal {
		t.Fatalf("ParamMissing classification wrong: %+v", pm)
	}
	if pm.Context["key"] != "/hla-compass/s3-bucket" {
		t.Fatalf("missing key context: %+v", pm.Context)
	}

	inv := InvalidationFailed("E123", stderrors.New("503"))
	if inv.Severity != SeverityWarning {
		t.Fatal("invalidation failures must be warnings, never fatal")
	}
}
