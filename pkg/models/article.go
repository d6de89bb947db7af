package models

import (
	"strings"
	"time"
)

// SourceTier is a coarse trust bucket used to break ranking ties.
// tier1 = wire-service grade, tier2 = mainstream financial media,
// tier3 = unclassified.
type SourceTier string

const (
	Tier1 SourceTier = "tier1"
	Tier2 SourceTier = "tier2"
	Tier3 SourceTier = "tier3"
)

// Weight maps a tier to its sort weight. Unknown tiers rank with tier3.
func (t SourceTier) Weight() int {
	switch t {
	case Tier1:
		return 3
	case Tier2:
		return 2
	default:
		return 1
	}
}

var tierBySource = map[string]SourceTier{
	"reuters":             Tier1,
	"bloomberg":           Tier1,
	"associated press":    Tier1,
	"dow jones":           Tier1,
	"wall street journal": Tier2,
	"cnbc":                Tier2,
	"financial times":     Tier2,
	"marketwatch":         Tier2,
	"barron's":            Tier2,
	"forbes":              Tier2,
	"yahoo finance":       Tier2,
	"seeking alpha":       Tier2,
	"business insider":    Tier2,
}

// TierForSource buckets a source name into a trust tier. Unrecognized
// sources are tier3.
func TierForSource(source string) SourceTier {
	if t, ok := tierBySource[strings.ToLower(strings.TrimSpace(source))]; ok {
		return t
	}
	return Tier3
}

// Article is a news item normalized from one provider's response.
// Created per request, never persisted, discarded after the response is sent.
type Article struct {
	Headline    string     `json:"headline" validate:"required"`
	Summary     string     `json:"summary,omitempty"`
	Source      string     `json:"source"`
	SourceTier  SourceTier `json:"sourceTier" validate:"tier"`
	URL         string     `json:"url,omitempty"`
	PublishedAt time.Time  `json:"publishedAt"`
	Sentiment   string     `json:"sentiment,omitempty" validate:"sentiment"`
	Impact      string     `json:"impact,omitempty"`
	Relevance   int        `json:"relevance"`
	Category    string     `json:"category,omitempty"`
	RawContent  string     `json:"-"`
}
