package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/azured/lyricchain/pkg/logger"
	"github.com/azured/lyricchain/pkg/lyricchain"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service lyricchain.Service
	config  *ServerConfig
	log     lyricchain.Logger
}

// NewServer creates a new server instance
func NewServer(service lyricchain.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "LyricChain API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":     "GET /health",
			"stats":      "GET /api/stats",
			"resolve":    "POST /api/resolve",
			"history":    "GET /api/history",
			"clearCache": "POST /api/cache/clear",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats()
	if err != nil {
		s.log.Errorf("Failed to read stats: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve stats")
		return
	}

	s.respondJSON(w, http.StatusOK, stats)
}

// handleResolve handles POST /api/resolve
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Errorf("Failed to decode request: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.service.Resolve(ctx, req.Text)
	if err != nil {
		s.log.Errorf("Resolution failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to resolve text")
		return
	}

	if res == nil {
		s.respondJSON(w, http.StatusOK, ResolveResponse{Matched: false})
		return
	}

	s.respondJSON(w, http.StatusOK, ResolveResponse{
		Matched: true,
		Result: &MatchResultDTO{
			SongID:      res.SongID,
			SongName:    res.SongName,
			Artist:      res.Artist,
			MatchedLine: res.MatchedLine,
			NextLine:    res.NextLine,
			FromCache:   res.FromCache,
		},
	})
}

// handleHistory handles GET /api/history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	rows, err := s.service.History(limit)
	if err != nil {
		s.log.Errorf("Failed to read history: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	entries := make([]HistoryEntryDTO, len(rows))
	for i, row := range rows {
		entries[i] = HistoryEntryDTO{
			Query:       row.Query,
			SongID:      row.SongID,
			SongName:    row.SongName,
			Artist:      row.Artist,
			MatchedLine: row.MatchedLine,
			NextLine:    row.NextLine,
			CacheHit:    row.CacheHit,
			ResolvedAt:  row.CreatedAt.Format(time.RFC3339),
		}
	}

	s.respondJSON(w, http.StatusOK, HistoryResponse{
		Entries: entries,
		Count:   len(entries),
	})
}

// handleClearCache handles POST /api/cache/clear
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearCache(); err != nil {
		s.log.Errorf("Failed to clear cache: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	s.log.Infof("Cache cleared via API")
	s.respondJSON(w, http.StatusOK, ClearCacheResponse{
		Message: "Cache cleared successfully",
	})
}

// handleResolveRoute routes requests to /api/resolve
func (s *Server) handleResolveRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleResolve(w, r)
}

// handleClearCacheRoute routes requests to /api/cache/clear
func (s *Server) handleClearCacheRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleClearCache(w, r)
}

// handleHistoryRoute routes requests to /api/history
func (s *Server) handleHistoryRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleHistory(w, r)
}
