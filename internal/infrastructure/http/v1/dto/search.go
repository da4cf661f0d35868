package dto

import "vcbot/internal/domain/search"

// SearchRequest is one vector search query.
type SearchRequest struct {
	Query     string `json:"query" binding:"required"`
	TopK      int    `json:"top_k"`
	FullBills bool   `json:"full_bills"`
}

// SearchResult is one ranked hit.
type SearchResult struct {
	Score  float64 `json:"score"`
	BillID string  `json:"bill_id"`
	Text   string  `json:"text"`
}

// FromSearchResults converts domain results.
func FromSearchResults(results []search.Result) []SearchResult {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{Score: r.Score, BillID: r.BillID, Text: r.Text}
	}
	return out
}
