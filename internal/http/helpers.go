package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
	"bilancio/internal/log"
)

// parseDateParam reads a YYYY-MM-DD query parameter. An absent parameter
// yields the zero date, which downstream means an open bound.
func parseDateParam(r *http.Request, name string) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, err
	}
	return d, nil
}

// parseFilter builds an entry filter from comma-separated query parameters.
func parseFilter(r *http.Request) ledger.EntryFilter {
	return ledger.EntryFilter{
		Categories:        splitParam(r, "categories"),
		ExcludeCategories: splitParam(r, "exclude_categories"),
		Wallets:           splitParam(r, "wallets"),
		Tags:              splitParam(r, "tags"),
	}
}

func splitParam(r *http.Request, name string) []string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// currentMonth returns the first and last day of the wall-clock month; the
// summary endpoint defaults to it when no interval is given.
func currentMonth() (core.Date, core.Date) {
	today := core.DateOf(time.Now())
	first := core.MonthStart(today)
	last := core.NewDate(today.Year, today.Month, core.LastDayOfMonth(today.Year, today.Month))
	return first, last
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Default(log.ComponentHTTP).Error("Failed to encode response", log.FieldError, err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors onto HTTP statuses: bad queries and
// invalid payloads are the client's fault, missing rows are 404, everything
// else is a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInterval),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrUnboundedQuery),
		errors.Is(err, core.ErrClockNotProvided):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrRuleInvariant):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.Default(log.ComponentHTTP).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method, log.FieldPath, r.URL.Path, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
