package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vbonduro/solienne/internal/eden"
)

const defaultCreationsLimit = 20

// CreationsClient is the subset of eden.Client the proxy requires.
type CreationsClient interface {
	FetchCreations(ctx context.Context, agentID string, limit int, cursor string) (*eden.CreationsPage, error)
}

// ClientFactory builds a CreationsClient for a single request. It runs per
// request so a missing API key fails the request rather than startup.
type ClientFactory func() (CreationsClient, error)

func (s *Server) handleCreations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := parseLimit(q.Get("limit"))
	cursor := q.Get("cursor")

	if s.agentID == "" {
		writeJSONError(w, "SOLIENNE_AGENT_ID not configured")
		s.logger.Error("fetch creations failed", "error", "SOLIENNE_AGENT_ID not configured")
		return
	}

	client, err := s.newClient()
	if err != nil {
		s.failCreations(w, err)
		return
	}

	page, err := client.FetchCreations(r.Context(), s.agentID, limit, cursor)
	if err != nil {
		s.failCreations(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if page.Raw != nil {
		if _, err := w.Write(page.Raw); err != nil {
			s.logger.Error("write creations failed", "error", err)
		}
		return
	}
	if err := json.NewEncoder(w).Encode(page); err != nil {
		s.logger.Error("encode creations failed", "error", err)
	}
}

func (s *Server) failCreations(w http.ResponseWriter, err error) {
	s.logger.Error("fetch creations failed", "error", err)
	msg := err.Error()
	if msg == "" {
		msg = "Failed to fetch creations"
	}
	writeJSONError(w, msg)
}

// parseLimit returns the requested page size, or the default when the value
// is absent or not a positive integer.
func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultCreationsLimit
	}
	return n
}

func writeJSONError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
