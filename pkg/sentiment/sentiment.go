// Package sentiment assigns per-article polarity and rolls article lists into
// a single distribution and score.
package sentiment

import (
	"strings"

	"github.com/Vijfie/marketlens/pkg/models"
)

const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

var positiveWords = []string{
	"beat", "beats", "surge", "soar", "soars", "rally", "gain", "gains",
	"jump", "jumps", "rise", "rises", "record", "strong", "upgrade",
	"outperform", "bullish", "growth", "profit", "win", "wins",
}

var negativeWords = []string{
	"miss", "misses", "plunge", "plunges", "fall", "falls", "drop", "drops",
	"slump", "decline", "declines", "weak", "downgrade", "underperform",
	"bearish", "loss", "losses", "lawsuit", "cut", "cuts", "warn", "warns",
}

// Classify runs a lexical polarity count over the text. Ties (including
// zero matches) are neutral.
func Classify(text string) string {
	t := strings.ToLower(text)
	var pos, neg int
	for _, w := range positiveWords {
		if strings.Contains(t, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(t, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return Positive
	case neg > pos:
		return Negative
	default:
		return Neutral
	}
}

// FromScore buckets a provider-native sentiment score at the ±0.1 thresholds.
func FromScore(score float64) string {
	switch {
	case score > 0.1:
		return Positive
	case score < -0.1:
		return Negative
	default:
		return Neutral
	}
}

// Aggregate computes the distribution over already-classified articles.
// score = (positive − negative) / total × 100, label bucketed at ±20.
// An empty list yields score 0, label neutral.
func Aggregate(articles []models.Article) models.SentimentSummary {
	s := models.SentimentSummary{Label: Neutral}
	for _, a := range articles {
		switch a.Sentiment {
		case Positive:
			s.Positive++
		case Negative:
			s.Negative++
		default:
			s.Neutral++
		}
	}
	total := s.Positive + s.Negative + s.Neutral
	if total == 0 {
		return s
	}
	s.Score = float64(s.Positive-s.Negative) / float64(total) * 100
	switch {
	case s.Score > 20:
		s.Label = Positive
	case s.Score < -20:
		s.Label = Negative
	}
	return s
}
