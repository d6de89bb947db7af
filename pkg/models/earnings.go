package models

// EarningsSourceEstimated marks a synthesized earnings record. Callers must
// be able to tell estimates from provider data on the wire.
const EarningsSourceEstimated = "Estimated"

// Quarter is one reported (or estimated) earnings period. Figures are
// pointers so an estimate can say "unknown" instead of fabricating numbers.
type Quarter struct {
	Period    string   `json:"period"` // e.g. "Q3"
	Year      int      `json:"year"`
	Revenue   *float64 `json:"revenue,omitempty"`
	NetIncome *float64 `json:"netIncome,omitempty"`
	EPS       *float64 `json:"eps,omitempty"`
	GrowthYoY *float64 `json:"growthYoY,omitempty"`
}

// Earnings is the earnings record assembled from the provider chain, or a
// synthesized fallback when every provider fails.
type Earnings struct {
	Success    bool      `json:"success"`
	Source     string    `json:"source"`
	Latest     *Quarter  `json:"latest,omitempty"`
	Outlook    string    `json:"outlook,omitempty"`
	Historical []Quarter `json:"historical,omitempty"`
}

// IsEstimated reports whether the record was synthesized rather than fetched.
func (e Earnings) IsEstimated() bool {
	return e.Source == EarningsSourceEstimated
}
