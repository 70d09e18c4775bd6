package main

import (
	"fmt"
	"unicode/utf8"
)

// MaxResolveTextLength bounds request text; anything longer is never a
// single lyric line.
const MaxResolveTextLength = 500

// ResolveRequest is the request body for POST /api/resolve
type ResolveRequest struct {
	// Text is the candidate lyric fragment (required)
	Text string `json:"text"`
}

// Validate checks if the request is valid
func (r *ResolveRequest) Validate() error {
	if r.Text == "" {
		return fmt.Errorf("text is required")
	}
	if utf8.RuneCountInString(r.Text) > MaxResolveTextLength {
		return fmt.Errorf("text too long: %d runes (maximum: %d)",
			utf8.RuneCountInString(r.Text), MaxResolveTextLength)
	}
	return nil
}

// MatchResultDTO represents a resolved lyric match in API responses
type MatchResultDTO struct {
	SongID      string `json:"song_id"`
	SongName    string `json:"song_name"`
	Artist      string `json:"artist"`
	MatchedLine string `json:"matched_line"`
	NextLine    string `json:"next_line"`
	FromCache   bool   `json:"from_cache"`
}

// ResolveResponse is the response for POST /api/resolve. Matched is false
// when the text was not recognized as a lyric fragment; Result is then
// omitted.
type ResolveResponse struct {
	Matched bool            `json:"matched"`
	Result  *MatchResultDTO `json:"result,omitempty"`
}

// HistoryEntryDTO represents one past resolution
type HistoryEntryDTO struct {
	Query       string `json:"query"`
	SongID      string `json:"song_id"`
	SongName    string `json:"song_name"`
	Artist      string `json:"artist"`
	MatchedLine string `json:"matched_line"`
	NextLine    string `json:"next_line"`
	CacheHit    bool   `json:"cache_hit"`
	ResolvedAt  string `json:"resolved_at"`
}

// HistoryResponse is the response for GET /api/history
type HistoryResponse struct {
	Entries []HistoryEntryDTO `json:"entries"`
	Count   int               `json:"count"`
}

// ClearCacheResponse is the response for POST /api/cache/clear
type ClearCacheResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
