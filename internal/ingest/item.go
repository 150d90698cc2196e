package ingest

import (
	"context"

	"github.com/ArcCdr/AutomatedFanfic/internal/sites"
)

// Item is one story URL pulled from the watch folder. RawURL is the file
// content after trimming; Site and NormalizedURL are assigned during
// dispatch. SourceFile carries the originating file name for diagnostics.
type Item struct {
	RawURL        string
	Site          string
	NormalizedURL string
	SourceFile    string
}

// Sink accepts routed items. Offer must not block; a sink that cannot take
// the item returns an error and the dispatcher records the drop.
type Sink interface {
	Offer(item Item) error
}

// Notifier delivers diverted stories instead of queueing them.
type Notifier interface {
	Notify(ctx context.Context, title, body, tag string) error
}

// Classifier maps a raw URL to its hosting site and normalized form.
type Classifier interface {
	Classify(raw string) (sites.Result, error)
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(raw string) (sites.Result, error)

func (f ClassifierFunc) Classify(raw string) (sites.Result, error) { return f(raw) }
