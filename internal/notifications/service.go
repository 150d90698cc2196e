package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
	"github.com/ArcCdr/AutomatedFanfic/internal/services"
)

const userAgent = "AutomatedFanfic-Go/0.1.0"

// DiversionTitle is the push title used when a story is diverted to
// notification instead of a download queue.
const DiversionTitle = "New Fanfiction Download"

// Service defines the notification surface exposed to watcher components.
type Service interface {
	Notify(ctx context.Context, title, body, tag string) error
	TestNotification(ctx context.Context) error
}

type sender interface {
	name() string
	send(ctx context.Context, title, body, tag string) error
}

// NewService builds a notification service from the configured senders.
// When neither ntfy nor Pushbullet is configured, a noop implementation
// is returned.
func NewService(cfg *config.Config) Service {
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	var senders []sender
	if topic := strings.TrimSpace(cfg.Notifications.NtfyTopic); topic != "" {
		senders = append(senders, &ntfySender{endpoint: topic, client: client})
	}
	if token := strings.TrimSpace(cfg.Notifications.PushbulletToken); token != "" {
		senders = append(senders, &pushbulletSender{
			token:    token,
			device:   strings.TrimSpace(cfg.Notifications.PushbulletDevice),
			endpoint: pushbulletEndpoint,
			client:   client,
		})
	}
	if len(senders) == 0 {
		return noopService{}
	}

	attempts := cfg.Notifications.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &service{
		senders:  senders,
		attempts: attempts,
		delay:    time.Duration(cfg.Notifications.RetryDelaySeconds) * time.Second,
	}
}

type service struct {
	senders  []sender
	attempts int
	delay    time.Duration
}

// Notify delivers the message to every configured sender. Failures are
// retried per sender and the remaining errors joined.
func (s *service) Notify(ctx context.Context, title, body, tag string) error {
	var errs []error
	for _, snd := range s.senders {
		if err := s.deliver(ctx, snd, title, body, tag); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", snd.name(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *service) TestNotification(ctx context.Context) error {
	return s.Notify(ctx, "AutomatedFanfic - Test", "Notification system test", "test")
}

// deliver retries a single sender with growing pauses: the wait after
// attempt n is delay*(n+1), so 10s then 20s at the default settings.
// Configuration-classed failures skip the retries; a rejected token will
// not start working on the next attempt.
func (s *service) deliver(ctx context.Context, snd sender, title, body, tag string) error {
	var lastErr error
	for attempt := 0; attempt < s.attempts; attempt++ {
		lastErr = snd.send(ctx, title, body, tag)
		if lastErr == nil {
			return nil
		}
		if services.IsFatal(lastErr) || attempt == s.attempts-1 {
			break
		}
		wait := s.delay * time.Duration(attempt+1)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

type noopService struct{}

func (noopService) Notify(context.Context, string, string, string) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }

// wrapTransportError tags a failed HTTP exchange so callers can branch on
// failure class. Timeouts are marked distinctly from other network faults.
func wrapTransportError(senderName string, err error) error {
	marker := services.ErrTransient
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		marker = services.ErrTimeout
	}
	return services.Wrap(marker, "notify", senderName, "send request", err)
}

// wrapStatusError classifies a non-success HTTP response. Auth rejections
// point at credentials in the config file rather than a service hiccup.
func wrapStatusError(senderName string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	marker := services.ErrTransient
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		marker = services.ErrConfiguration
	}
	detail := fmt.Sprintf("returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	return services.Wrap(marker, "notify", senderName, detail, nil)
}
