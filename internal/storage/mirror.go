package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitepub/internal/logfields"
	"git.home.luguber.info/inful/sitepub/internal/retry"
	"git.home.luguber.info/inful/sitepub/internal/site"
)

// MirrorResult summarizes a mirror sync.
type MirrorResult struct {
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
}

// Mirror makes the store's object set exactly equal to tree: objects only in
// the tree are created, objects with differing etags are overwritten, and
// objects absent from the tree are deleted. A failed upload or delete aborts
// the sync immediately; the store may be left partially synced (no rollback
// is provided) and the caller must not invalidate caches afterwards.
//
// Per-object uploads honor the retry policy; the default policy performs no
// retries.
func Mirror(ctx context.Context, store ObjectStore, tree *site.Tree, policy retry.Policy) (MirrorResult, error) {
	var res MirrorResult

	existing, err := store.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list destination: %w", err)
	}

	for _, f := range tree.Files() {
		etag, present := existing[f.Path]
		switch {
		case present && etag == f.ETag:
			res.Unchanged++
			continue
		case present:
			res.Updated++
		default:
			res.Created++
		}
		if err := putWithRetry(ctx, store, f, policy); err != nil {
			return res, fmt.Errorf("upload %s: %w", f.Path, err)
		}
	}

	for key := range existing {
		if tree.Get(key) != nil {
			continue
		}
		if err := store.Delete(ctx, key); err != nil && !IsNotFound(err) {
			return res, fmt.Errorf("delete %s: %w", key, err)
		}
		res.Deleted++
	}

	return res, nil
}

func putWithRetry(ctx context.Context, store ObjectStore, f *site.File, policy retry.Policy) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = store.Put(ctx, f.Path, f.Data, f.ContentType)
		if err == nil {
			return nil
		}
		if attempt >= policy.MaxRetries {
			return err
		}
		delay := policy.Delay(attempt + 1)
		slog.Debug("Retrying object upload", logfields.Key(f.Path), slog.Int("attempt", attempt+1), slog.Duration("delay", delay), logfields.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
