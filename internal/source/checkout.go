// Package source checks out the documentation source repository ahead of a
// render, for configurations that publish from git rather than a local tree.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	appcfg "git.home.luguber.info/inful/sitepub/internal/config"
	"git.home.luguber.info/inful/sitepub/internal/logfields"
)

// Checkout clones the configured repository into destDir and returns the
// checked-out path. Any existing checkout at destDir is replaced; publishes
// always render from a clean tree.
func Checkout(ctx context.Context, repo appcfg.RepoConfig, destDir string) (string, error) {
	if repo.URL == "" {
		return "", fmt.Errorf("source repo url is empty")
	}
	if err := os.RemoveAll(destDir); err != nil {
		return "", fmt.Errorf("failed to remove existing checkout: %w", err)
	}

	opts := &git.CloneOptions{URL: repo.URL}
	if repo.Branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + repo.Branch)
		opts.SingleBranch = true
	}
	if repo.Depth > 0 {
		opts.Depth = repo.Depth
	}
	if repo.Token != "" {
		// Token auth over https; go-git requires a non-empty username.
		opts.Auth = &githttp.BasicAuth{Username: "token", Password: repo.Token}
	}

	slog.Debug("Cloning source repository", logfields.URL(repo.URL), slog.String("branch", repo.Branch), logfields.Path(destDir))
	repository, err := git.PlainCloneContext(ctx, destDir, false, opts)
	if err != nil {
		return "", fmt.Errorf("clone %s: %w", repo.URL, err)
	}
	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Source repository cloned", logfields.URL(repo.URL), slog.String("commit", ref.Hash().String()[:8]), logfields.Path(destDir))
	} else {
		slog.Info("Source repository cloned", logfields.URL(repo.URL), logfields.Path(destDir))
	}
	return destDir, nil
}
