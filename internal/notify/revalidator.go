// Package notify implements the fire-and-forget view revalidation hook.
// After any mutating domain operation the services ask the hook to
// invalidate cached views under a path; a failing hook must never fail the
// operation, so failures are logged and swallowed by the callers.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Revalidator invalidates externally cached views under a path.
type Revalidator interface {
	Invalidate(ctx context.Context, path string) error
}

// Noop satisfies Revalidator when no hook is configured.
type Noop struct{}

func (Noop) Invalidate(ctx context.Context, path string) error {
	return nil
}

// httpRevalidator POSTs {"path": ...} to a configured endpoint.
type httpRevalidator struct {
	url    string
	client *http.Client
}

// NewHTTP creates a Revalidator that notifies the given URL.
func NewHTTP(url string) Revalidator {
	return &httpRevalidator{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *httpRevalidator) Invalidate(ctx context.Context, path string) error {
	body, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("revalidation hook returned status %d", resp.StatusCode)
	}
	return nil
}
