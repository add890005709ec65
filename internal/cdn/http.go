package cdn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// invalidateTimeout bounds the purge call so a hung control plane cannot
// stall an already-successful publish.
const invalidateTimeout = 30 * time.Second

// HTTPInvalidator posts purge requests to a CDN control-plane endpoint:
// POST {endpoint}/distributions/{id}/invalidations with a JSON body naming
// the path pattern.
type HTTPInvalidator struct {
	endpoint string
	client   *http.Client
}

// NewHTTPInvalidator creates an invalidator for the given control-plane URL.
func NewHTTPInvalidator(endpoint string) *HTTPInvalidator {
	return &HTTPInvalidator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: invalidateTimeout},
	}
}

type invalidationRequest struct {
	Paths []string `json:"paths"`
}

// Invalidate requests a purge of pattern for distributionID.
func (c *HTTPInvalidator) Invalidate(ctx context.Context, distributionID, pattern string) error {
	body, err := json.Marshal(invalidationRequest{Paths: []string{pattern}})
	if err != nil {
		return fmt.Errorf("marshal invalidation request: %w", err)
	}

	url := fmt.Sprintf("%s/distributions/%s/invalidations", c.endpoint, distributionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build invalidation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("invalidation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("invalidation rejected: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return nil
}
