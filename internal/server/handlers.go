package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

func (s *StatusServer) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, newDashboardData(s.tracker.Status().Channel)); err != nil {
		s.log.Error("Dashboard render failed", "error", err)
		http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck
}

func (s *StatusServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	st := s.tracker.Status()

	status := "ok"
	code := http.StatusOK
	if !st.Connected {
		status = "disconnected"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"channel":   st.Channel,
		"sessions":  st.Sessions,
	})
}

func (s *StatusServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.tracker.Status()

	resp := statusResponse{Status: st}
	if st.Viewers != nil {
		resp.ViewersHuman = humanize.Comma(int64(st.Viewers.Viewers))
		resp.ViewersUpdated = humanize.Time(st.Viewers.At)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *StatusServer) handleViewers(w http.ResponseWriter, r *http.Request) {
	samples := s.tracker.Viewers()

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		if limit < len(samples) {
			samples = samples[len(samples)-limit:]
		}
	}

	writeJSON(w, http.StatusOK, samples)
}

func (s *StatusServer) handleEvents(w http.ResponseWriter, _ *http.Request) {
	counts := s.tracker.Counts()

	out := make(map[string]int, len(counts))
	total := 0
	for kind, n := range counts {
		out[string(kind)] = n
		total += n
	}

	writeJSON(w, http.StatusOK, eventCounts{Total: total, ByKind: out})
}

func (s *StatusServer) handleChat(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Chat())
}

type statusResponse struct {
	Status
	ViewersHuman   string `json:"viewers_human,omitempty"`
	ViewersUpdated string `json:"viewers_updated,omitempty"`
}

type eventCounts struct {
	Total  int            `json:"total"`
	ByKind map[string]int `json:"by_kind"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v) //nolint:errcheck
}
