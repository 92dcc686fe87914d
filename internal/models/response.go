package models

type QuoteMetadata struct {
	ComputedMs int64  `json:"computed_ms"`
	Split      bool   `json:"split"`
	Currency   string `json:"currency"`
}

type QuoteResponse struct {
	QuoteID        string        `json:"quote_id"`
	Result         QuoteResult   `json:"result"`
	FormattedTotal string        `json:"formatted_total,omitempty"`
	Metadata       QuoteMetadata `json:"metadata"`
}

type CategoryQuote struct {
	Category       Category    `json:"category"`
	Result         QuoteResult `json:"result"`
	FormattedTotal string      `json:"formatted_total,omitempty"`
}

type CompareResponse struct {
	QuoteID    string          `json:"quote_id"`
	Selection  Selection       `json:"selection"`
	RankMetric RankMetric      `json:"rank_metric"`
	Quotes     []CategoryQuote `json:"quotes"`
	Rejected   []CategoryQuote `json:"rejected,omitempty"`
	ComputedMs int64           `json:"computed_ms"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
