package source

import (
	"context"
	"path/filepath"
	"testing"

	appcfg "git.home.luguber.info/inful/sitepub/internal/config"
)

func TestCheckoutRequiresURL(t *testing.T) {
	_, err := Checkout(context.Background(), appcfg.RepoConfig{}, filepath.Join(t.TempDir(), "src"))
	if err == nil {
		t.Fatal("expected error for empty repo url")
	}
}

func TestCheckoutBadURLFails(t *testing.T) {
	repo := appcfg.RepoConfig{URL: "file:///nonexistent/repo.git", Branch: "main"}
	if _, err := Checkout(context.Background(), repo, filepath.Join(t.TempDir(), "src")); err == nil {
		t.Fatal("expected clone failure for nonexistent repository")
	}
}
