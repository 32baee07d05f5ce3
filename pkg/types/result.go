package types

import "errors"

// SearchResult is one ranked hit returned by the search index
type SearchResult struct {
	Document *Document
	Score    float64 // 0 is an exact match, 1 the worst admissible match
	Rank     int     // Position in result set (1-based)
}

// Validate checks if the search result is well formed
func (sr *SearchResult) Validate() error {
	if sr.Document == nil {
		return errors.New("search result has no document")
	}
	if sr.Rank < 1 {
		return errors.New("rank must be >= 1")
	}
	if sr.Score < 0 || sr.Score > 1 {
		return errors.New("score must be between 0 and 1")
	}
	return nil
}
