package ingest

import (
	"context"
	"log/slog"

	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/notifications"
	"github.com/ArcCdr/AutomatedFanfic/internal/sites"
)

// Dispatcher classifies extracted items and delivers each to exactly one
// destination: a site queue, the notifier when the diversion override
// applies, or a logged drop.
type Dispatcher struct {
	classifier   Classifier
	destinations map[string]Sink
	notifier     Notifier
	divertFFNet  bool
	logger       *slog.Logger
}

// NewDispatcher builds a dispatcher over the supplied destination map. The
// map is read-only from the dispatcher's perspective; callers hand over a
// fully built map and never mutate it afterwards.
func NewDispatcher(classifier Classifier, destinations map[string]Sink, notifier Notifier, divertFanfictionNet bool, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{
		classifier:   classifier,
		destinations: destinations,
		notifier:     notifier,
		divertFFNet:  divertFanfictionNet,
		logger:       logging.NewComponentLogger(logger, "dispatcher"),
	}
}

// Dispatch routes one item. Failures never propagate; every outcome is
// logged and the watcher moves on to the next item.
func (d *Dispatcher) Dispatch(ctx context.Context, item Item) {
	logger := logging.WithContext(ctx, d.logger).With(
		logging.String(logging.FieldSourceFile, item.SourceFile),
	)

	if d.classifier == nil {
		logger.Warn("no classifier configured; dropping item",
			logging.String(logging.FieldEventType, "classify_unavailable"),
		)
		return
	}

	result, err := d.classifier.Classify(item.RawURL)
	if err != nil {
		logger.Warn("classification failed; dropping item",
			logging.Error(err),
			logging.String(logging.FieldEventType, "classify_failed"),
			logging.String("raw_url", item.RawURL),
		)
		return
	}
	item.Site = result.Site
	item.NormalizedURL = result.NormalizedURL
	logger = logger.With(logging.String(logging.FieldSite, item.Site))

	if item.Site == sites.FanFictionNet && d.divertFFNet {
		d.divert(ctx, item, logger)
		return
	}

	sink, ok := d.destinations[item.Site]
	if !ok {
		sink, ok = d.destinations[sites.Other]
	}
	if !ok {
		logger.Debug("no destination for site; dropping item",
			logging.String(logging.FieldEventType, "route_unconfigured"),
			logging.String("url", item.NormalizedURL),
		)
		return
	}

	if err := sink.Offer(item); err != nil {
		logger.Warn("destination rejected item; dropping",
			logging.Error(err),
			logging.String(logging.FieldEventType, "route_rejected"),
			logging.String("url", item.NormalizedURL),
		)
		return
	}

	logger.Info("story routed",
		logging.String(logging.FieldEventType, "story_routed"),
		logging.String("url", item.NormalizedURL),
	)
}

// divert sends the story to the notifier instead of a queue. Delivery is
// fire and forget: a failed push is logged and the item is still counted
// as handled so it is never queued as well.
func (d *Dispatcher) divert(ctx context.Context, item Item, logger *slog.Logger) {
	if d.notifier == nil {
		logger.Warn("diversion configured but no notifier available; dropping item",
			logging.String(logging.FieldEventType, "diversion_unavailable"),
			logging.String(logging.FieldErrorHint, "configure an ntfy topic or pushbullet token"),
			logging.String("url", item.NormalizedURL),
		)
		return
	}
	if err := d.notifier.Notify(ctx, notifications.DiversionTitle, item.NormalizedURL, item.Site); err != nil {
		logger.Warn("diversion notification failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "diversion_failed"),
			logging.String("url", item.NormalizedURL),
		)
		return
	}
	logger.Info("story diverted to notification",
		logging.String(logging.FieldEventType, "story_diverted"),
		logging.String("url", item.NormalizedURL),
	)
}
