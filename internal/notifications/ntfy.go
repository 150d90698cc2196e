package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ntfyPriority pins the delivery priority so topic-level overrides on the
// server do not reorder story notifications.
const ntfyPriority = "default"

type ntfySender struct {
	endpoint string
	client   *http.Client
}

func (n *ntfySender) name() string { return "ntfy" }

func (n *ntfySender) send(ctx context.Context, title, body, tag string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("create ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Priority", ntfyPriority)
	if title != "" {
		req.Header.Set("Title", title)
	}
	if tag = strings.TrimSpace(tag); tag != "" {
		req.Header.Set("Tags", tag)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return wrapTransportError(n.name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return wrapStatusError(n.name(), resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
