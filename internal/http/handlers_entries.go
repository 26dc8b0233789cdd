package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"bilancio/internal/core"
)

type createEntryRequest struct {
	Kind        string   `json:"kind"`
	Amount      string   `json:"amount"`       // decimal string, e.g. "12.34"
	AmountCents int64    `json:"amount_cents"` // used when Amount is empty
	Date        string   `json:"date"`
	Category    string   `json:"category"`
	Wallet      string   `json:"wallet"`
	Tags        []string `json:"tags"`
}

type createEntryResponse struct {
	ID string `json:"id"`
}

type excludeOccurrenceRequest struct {
	Date string `json:"date"`
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents := req.AmountCents
	if req.Amount != "" {
		parsed, err := core.ParseDecimalToCents(req.Amount)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+err.Error())
			return
		}
		cents = parsed
	}

	date, err := core.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date: "+err.Error())
		return
	}

	entry := core.PunctualEntry{
		Kind:     core.Kind(strings.TrimSpace(req.Kind)),
		Amount:   core.Money{Cents: cents},
		Date:     date,
		Category: sanitizeInput(req.Category),
		Wallet:   sanitizeInput(req.Wallet),
		Tags:     sanitizeTags(req.Tags),
	}

	id, err := s.svc.CreateEntry(r.Context(), entry)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.InvalidateCaches()
	writeJSON(w, http.StatusCreated, createEntryResponse{ID: id})
}

func (s *Server) handleEntryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/entries/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := s.svc.DeleteEntry(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.InvalidateCaches()
	w.WriteHeader(http.StatusNoContent)
}

// handleRuleSubresource serves POST /api/v1/rules/{id}/exclusions.
func (s *Server) handleRuleSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/rules/")
	ruleID, sub, found := strings.Cut(rest, "/")
	if !found || sub != "exclusions" || ruleID == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req excludeOccurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := core.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date: "+err.Error())
		return
	}

	if err := s.svc.ExcludeOccurrence(r.Context(), ruleID, date); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.InvalidateCaches()
	writeJSON(w, http.StatusCreated, map[string]string{
		"rule_id": ruleID,
		"date":    date.ISO(),
	})
}

func sanitizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if v := sanitizeInput(t); v != "" {
			out = append(out, v)
		}
	}
	return out
}
