// Package news merges article lists from all news providers into one
// deduplicated, relevance-ranked feed.
package news

import (
	"sort"
	"strings"

	"github.com/Vijfie/marketlens/pkg/metrics"
	"github.com/Vijfie/marketlens/pkg/models"
)

// financialKeywords add +5 relevance each when present in headline+summary.
var financialKeywords = []string{
	"earnings", "revenue", "profit", "loss", "guidance", "outlook", "forecast",
}

// highImpactTerms add +3 relevance each.
var highImpactTerms = []string{
	"ceo", "acquisition", "merger", "partnership", "lawsuit",
}

// Options are the reconciliation policy knobs.
type Options struct {
	// MaxArticles caps the ranked output.
	MaxArticles int
	// DedupePrefixLen is the lowercase headline prefix length used as the
	// duplicate key. Near-duplicates diverging after the prefix collide;
	// this is a known heuristic, kept as-is.
	DedupePrefixLen int
}

// Reconcile concatenates the per-provider lists, deduplicates, scores against
// the symbol, sorts and truncates. Input order matters only for duplicate
// resolution: the first occurrence wins.
func Reconcile(symbol string, lists [][]models.Article, opts Options) []models.Article {
	var merged []models.Article
	for _, l := range lists {
		merged = append(merged, l...)
	}
	metrics.ArticlesMerged.Observe(float64(len(merged)))

	deduped := Dedupe(merged, opts.DedupePrefixLen)
	for i := range deduped {
		deduped[i].Relevance = Relevance(symbol, deduped[i])
		if deduped[i].Category == "" {
			deduped[i].Category = Categorize(deduped[i].Headline)
		}
		if deduped[i].Impact == "" {
			deduped[i].Impact = Impact(deduped[i].Headline)
		}
	}
	Rank(deduped)

	if opts.MaxArticles > 0 && len(deduped) > opts.MaxArticles {
		deduped = deduped[:opts.MaxArticles]
	}
	return deduped
}

// Dedupe drops articles whose lowercase headline prefix matches one already
// seen, even across providers. First occurrence wins.
func Dedupe(articles []models.Article, prefixLen int) []models.Article {
	if prefixLen <= 0 {
		prefixLen = 50
	}
	seen := make(map[string]struct{}, len(articles))
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		key := dedupeKey(a.Headline, prefixLen)
		if _, dup := seen[key]; dup {
			metrics.ArticlesDropped.Inc()
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// dedupeKey truncates by rune so multibyte headlines keep a full-length
// prefix instead of being cut mid-character.
func dedupeKey(headline string, prefixLen int) string {
	k := strings.ToLower(headline)
	if runes := []rune(k); len(runes) > prefixLen {
		k = string(runes[:prefixLen])
	}
	return k
}

// Relevance scores an article against the symbol: +10 if the symbol appears
// in headline+summary, +5 per financial keyword, +3 per high-impact term.
// Additive, unbounded, no normalization.
func Relevance(symbol string, a models.Article) int {
	text := strings.ToLower(a.Headline + " " + a.Summary)
	score := 0
	if symbol != "" && strings.Contains(text, strings.ToLower(symbol)) {
		score += 10
	}
	for _, kw := range financialKeywords {
		if strings.Contains(text, kw) {
			score += 5
		}
	}
	for _, term := range highImpactTerms {
		if strings.Contains(text, term) {
			score += 3
		}
	}
	return score
}

// Rank sorts in place: relevance desc, then source tier weight desc, then
// publish time desc.
func Rank(articles []models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].Relevance != articles[j].Relevance {
			return articles[i].Relevance > articles[j].Relevance
		}
		wi, wj := articles[i].SourceTier.Weight(), articles[j].SourceTier.Weight()
		if wi != wj {
			return wi > wj
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}

// Categorize buckets a headline. Buckets are mutually exclusive and the
// first match wins, so check order matters.
func Categorize(headline string) string {
	h := strings.ToLower(headline)
	switch {
	case containsAny(h, "earnings", "revenue", "quarter", "eps"):
		return "earnings"
	case containsAny(h, "upgrade", "downgrade", "analyst", "price target", "rating"):
		return "analyst"
	case containsAny(h, "ceo", "acquisition", "merger", "partnership", "launch"):
		return "corporate"
	case containsAny(h, "lawsuit", "sec", "investigation", "probe", "fine"):
		return "legal"
	default:
		return "general"
	}
}

// Impact classifies headline impact. First match wins.
func Impact(headline string) string {
	h := strings.ToLower(headline)
	switch {
	case containsAny(h, "acquisition", "merger", "bankruptcy", "lawsuit", "earnings"):
		return "high"
	case containsAny(h, "analyst", "upgrade", "downgrade", "partnership", "guidance"):
		return "medium"
	default:
		return "low"
	}
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
