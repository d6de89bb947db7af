package news

import (
	"strings"
	"testing"
	"time"

	"github.com/Vijfie/marketlens/pkg/models"
)

func TestDedupe_PrefixCollision(t *testing.T) {
	base := strings.Repeat("a", 50)
	articles := []models.Article{
		{Headline: base + " first variant", Source: "Reuters"},
		{Headline: base + " second variant", Source: "CNBC"},
	}
	out := Dedupe(articles, 50)
	if len(out) != 1 {
		t.Fatalf("got %d articles; want 1 (same 50-char prefix)", len(out))
	}
	if out[0].Source != "Reuters" {
		t.Errorf("kept %q; first occurrence must win", out[0].Source)
	}
}

func TestDedupe_DivergenceWithinPrefix(t *testing.T) {
	articles := []models.Article{
		{Headline: "Apple beats estimates in Q3"},
		{Headline: "Apple misses estimates in Q3"},
	}
	out := Dedupe(articles, 50)
	if len(out) != 2 {
		t.Fatalf("got %d articles; want 2 (headlines differ within prefix)", len(out))
	}
}

func TestDedupe_CaseInsensitive(t *testing.T) {
	articles := []models.Article{
		{Headline: "Tesla Announces New Factory"},
		{Headline: "TESLA ANNOUNCES NEW FACTORY"},
	}
	if out := Dedupe(articles, 50); len(out) != 1 {
		t.Fatalf("got %d articles; want 1 (case-insensitive key)", len(out))
	}
}

func TestDedupe_MultibytePrefixCountsRunes(t *testing.T) {
	// 25 two-byte runes occupy 50 bytes; the headlines diverge at rune 26,
	// well inside the 50-character window, so both must survive
	base := strings.Repeat("ü", 25)
	articles := []models.Article{
		{Headline: base + " gewinnt stark", Source: "Reuters"},
		{Headline: base + " verliert stark", Source: "CNBC"},
	}
	if out := Dedupe(articles, 50); len(out) != 2 {
		t.Fatalf("got %d articles; want 2 (divergence within 50 runes)", len(out))
	}

	// identical 50-rune prefixes still collapse
	long := strings.Repeat("ü", 50)
	articles = []models.Article{
		{Headline: long + " erste Variante", Source: "Reuters"},
		{Headline: long + " zweite Variante", Source: "CNBC"},
	}
	if out := Dedupe(articles, 50); len(out) != 1 {
		t.Fatalf("got %d articles; want 1 (same 50-rune prefix)", len(out))
	}
}

func TestRelevance_Additive(t *testing.T) {
	// symbol +10, two keywords +5 each, one high-impact term +3
	a := models.Article{
		Headline: "AAPL earnings beat as revenue climbs",
		Summary:  "CEO points to strong quarter",
	}
	if got := Relevance("AAPL", a); got != 23 {
		t.Errorf("Relevance = %d; want 23 (10 + 5*2 + 3*1)", got)
	}
}

func TestRelevance_SymbolCaseInsensitive(t *testing.T) {
	a := models.Article{Headline: "aapl rises"}
	if got := Relevance("AAPL", a); got != 10 {
		t.Errorf("Relevance = %d; want 10", got)
	}
}

func TestRelevance_NoMatches(t *testing.T) {
	a := models.Article{Headline: "Weather fine today"}
	if got := Relevance("AAPL", a); got != 0 {
		t.Errorf("Relevance = %d; want 0", got)
	}
}

func TestRank_ScoreThenTierThenRecency(t *testing.T) {
	now := time.Now()
	articles := []models.Article{
		{Headline: "low", Relevance: 5, SourceTier: models.Tier1, PublishedAt: now},
		{Headline: "high", Relevance: 20, SourceTier: models.Tier3, PublishedAt: now.Add(-time.Hour)},
		{Headline: "tie-t2", Relevance: 10, SourceTier: models.Tier2, PublishedAt: now},
		{Headline: "tie-t1", Relevance: 10, SourceTier: models.Tier1, PublishedAt: now.Add(-2 * time.Hour)},
		{Headline: "tie-t1-newer", Relevance: 10, SourceTier: models.Tier1, PublishedAt: now},
	}
	Rank(articles)

	wantOrder := []string{"high", "tie-t1-newer", "tie-t1", "tie-t2", "low"}
	for i, want := range wantOrder {
		if articles[i].Headline != want {
			t.Fatalf("position %d = %q; want %q (full order %v)", i, articles[i].Headline, want, headlines(articles))
		}
	}
}

func TestReconcile_TruncatesAtCap(t *testing.T) {
	var lists [][]models.Article
	for i := 0; i < 3; i++ {
		var l []models.Article
		for j := 0; j < 15; j++ {
			l = append(l, models.Article{
				Headline: strings.Repeat("x", i*20+j) + " headline variant",
			})
		}
		lists = append(lists, l)
	}
	out := Reconcile("AAPL", lists, Options{MaxArticles: 25, DedupePrefixLen: 50})
	if len(out) > 25 {
		t.Errorf("got %d articles; want <= 25", len(out))
	}
}

func TestReconcile_PartialProviderFailure(t *testing.T) {
	// three providers returned nothing, one returned 5 articles: the merge
	// must contain those 5, not an empty list
	five := []models.Article{
		{Headline: "one"}, {Headline: "two"}, {Headline: "three"},
		{Headline: "four"}, {Headline: "five"},
	}
	out := Reconcile("AAPL", [][]models.Article{nil, nil, nil, five}, Options{MaxArticles: 25, DedupePrefixLen: 50})
	if len(out) != 5 {
		t.Fatalf("got %d articles; want 5", len(out))
	}
}

func TestCategorize_FirstBucketWins(t *testing.T) {
	cases := []struct{ headline, want string }{
		{"Q3 earnings call scheduled", "earnings"},
		{"Analyst upgrades rating", "analyst"},
		{"CEO announces partnership", "corporate"},
		{"SEC investigation widens", "legal"},
		{"Shares trade sideways", "general"},
		// "earnings" outranks "analyst" when both match
		{"Analyst previews earnings", "earnings"},
	}
	for _, c := range cases {
		if got := Categorize(c.headline); got != c.want {
			t.Errorf("Categorize(%q) = %q; want %q", c.headline, got, c.want)
		}
	}
}

func TestImpact(t *testing.T) {
	cases := []struct{ headline, want string }{
		{"Merger talks confirmed", "high"},
		{"Analyst sees upside", "medium"},
		{"Company opens new office", "low"},
	}
	for _, c := range cases {
		if got := Impact(c.headline); got != c.want {
			t.Errorf("Impact(%q) = %q; want %q", c.headline, got, c.want)
		}
	}
}

func headlines(articles []models.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Headline
	}
	return out
}
