// Package sites classifies story URLs by hosting site. Site identifiers
// are canonical hostnames so they line up with the destination map keys
// in the watcher configuration.
package sites

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ArcCdr/AutomatedFanfic/internal/services"
)

const (
	FanFictionNet        = "fanfiction.net"
	ArchiveOfOurOwn      = "archiveofourown.org"
	FictionPress         = "fictionpress.com"
	RoyalRoad            = "royalroad.com"
	SufficientVelocity   = "forums.sufficientvelocity.com"
	SpaceBattles         = "forums.spacebattles.com"
	QuestionableQuesting = "forum.questionablequesting.com"
	// Other is the fallback identifier for URLs no dedicated rule claims.
	Other = "other"
)

// Result describes where a story URL belongs and the canonical form the
// rest of the pipeline should carry.
type Result struct {
	Site          string
	NormalizedURL string
}

type rule struct {
	site    string
	pattern *regexp.Regexp
	prefix  string
}

// Rules are ordered; the first match wins. The catch-all must stay last.
var rules = []rule{
	{FanFictionNet, regexp.MustCompile(`(fanfiction\.net/s/\d+)`), "www."},
	{ArchiveOfOurOwn, regexp.MustCompile(`(archiveofourown\.org/works/\d+)`), ""},
	{FictionPress, regexp.MustCompile(`(fictionpress\.com/s/\d+)`), ""},
	{RoyalRoad, regexp.MustCompile(`(royalroad\.com/fiction/\d+)`), ""},
	{SufficientVelocity, regexp.MustCompile(`(forums\.sufficientvelocity\.com/threads/.*\.\d+)`), ""},
	{SpaceBattles, regexp.MustCompile(`(forums\.spacebattles\.com/threads/.*\.\d+)`), ""},
	{QuestionableQuesting, regexp.MustCompile(`(forum\.questionablequesting\.com/threads/.*\.\d+)`), ""},
	{Other, regexp.MustCompile(`https?://(.*)`), ""},
}

var displayNames = map[string]string{
	FanFictionNet:        "FanFiction.net",
	ArchiveOfOurOwn:      "Archive of Our Own",
	FictionPress:         "FictionPress",
	RoyalRoad:            "Royal Road",
	SufficientVelocity:   "Sufficient Velocity",
	SpaceBattles:         "SpaceBattles",
	QuestionableQuesting: "Questionable Questing",
	Other:                "Other",
}

// Classify maps a raw story URL to its hosting site and normalized form.
// Any input carrying an http or https scheme classifies, falling back to
// Other when no dedicated rule matches; input without a scheme that no
// rule recognizes is an error.
func Classify(raw string) (Result, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{}, services.Wrap(services.ErrValidation, "sites", "classify", "empty URL", nil)
	}
	for _, r := range rules {
		match := r.pattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		return Result{Site: r.site, NormalizedURL: r.prefix + match[1]}, nil
	}
	return Result{}, services.Wrap(services.ErrValidation, "sites", "classify",
		fmt.Sprintf("no recognizable story URL in %q", trimmed), nil)
}

// Known returns the rule identifiers in match order, the fallback last.
func Known() []string {
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.site)
	}
	return names
}

// IsKnown reports whether site names a classification rule.
func IsKnown(site string) bool {
	normalized := strings.ToLower(strings.TrimSpace(site))
	for _, r := range rules {
		if r.site == normalized {
			return true
		}
	}
	return false
}

// DisplayName returns a human label for a site identifier. Unknown
// identifiers get a best-effort title derived from the hostname.
func DisplayName(site string) string {
	normalized := strings.ToLower(strings.TrimSpace(site))
	if name, ok := displayNames[normalized]; ok {
		return name
	}
	cleaned := strings.NewReplacer(".", " ", "-", " ", "_", " ").Replace(normalized)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return "Unknown"
	}
	return cases.Title(language.Und).String(cleaned)
}
