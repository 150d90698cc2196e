package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const pushbulletEndpoint = "https://api.pushbullet.com/v2/pushes"

type pushbulletSender struct {
	token    string
	device   string
	endpoint string
	client   *http.Client
}

type pushbulletNote struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	DeviceIden string `json:"device_iden,omitempty"`
}

func (p *pushbulletSender) name() string { return "pushbullet" }

func (p *pushbulletSender) send(ctx context.Context, title, body, _ string) error {
	note := pushbulletNote{
		Type:       "note",
		Title:      title,
		Body:       body,
		DeviceIden: p.device,
	}
	encoded, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal pushbullet note: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build pushbullet request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Access-Token", p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return wrapTransportError(p.name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return wrapStatusError(p.name(), resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
