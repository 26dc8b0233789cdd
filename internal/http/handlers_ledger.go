package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
	"bilancio/internal/log"
)

type flowTotalJSON struct {
	IncomeCents  int64 `json:"income_cents"`
	ExpenseCents int64 `json:"expense_cents"`
	NetCents     int64 `json:"net_cents"`
}

type occurrenceJSON struct {
	Key         string `json:"key"`
	SourceID    string `json:"source_id"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

type summaryResponse struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	TotalIncomeCents  int64 `json:"total_income_cents"`
	TotalExpenseCents int64 `json:"total_expense_cents"`
	NetBalanceCents   int64 `json:"net_balance_cents"`

	ByDay      map[string]flowTotalJSON `json:"by_day"`
	ByMonth    map[string]flowTotalJSON `json:"by_month"`
	ByCategory map[string]flowTotalJSON `json:"by_category"`

	Occurrences []occurrenceJSON  `json:"occurrences"`
	RuleErrors  map[string]string `json:"rule_errors,omitempty"`
}

type balanceResponse struct {
	Through      string `json:"through"`
	BalanceCents int64  `json:"balance_cents"`
	Balance      string `json:"balance"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.handleAggregation(w, r, "summary", s.svc.Summary)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	s.handleAggregation(w, r, "forecast", s.svc.Forecast)
}

type aggregateFunc func(ctx context.Context, from, to core.Date, filter ledger.EntryFilter) (core.LedgerResult, error)

func (s *Server) handleAggregation(w http.ResponseWriter, r *http.Request, name string, aggregate aggregateFunc) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	from, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date: "+err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date: "+err.Error())
		return
	}
	if from.IsZero() && to.IsZero() {
		from, to = currentMonth()
	}
	filter := parseFilter(r)

	key := cacheKey(name, from, to, filter)
	if result, found := s.summaryCache.Get(key); found {
		s.logger.DebugContext(r.Context(), "Aggregation cache hit", log.FieldCacheKey, key)
		writeJSON(w, http.StatusOK, toSummaryResponse(from, to, result))
		return
	}

	result, err := aggregate(r.Context(), from, to, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.summaryCache.Set(key, result)
	writeJSON(w, http.StatusOK, toSummaryResponse(from, to, result))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	through, err := parseDateParam(r, "through")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid through date: "+err.Error())
		return
	}
	if through.IsZero() {
		through = core.DateOf(time.Now())
	}
	filter := parseFilter(r)

	key := cacheKey("balance", core.Date{}, through, filter)
	if balance, found := s.balanceCache.Get(key); found {
		s.logger.DebugContext(r.Context(), "Balance cache hit", log.FieldCacheKey, key)
		writeJSON(w, http.StatusOK, balanceResponse{
			Through:      through.ISO(),
			BalanceCents: balance.Cents,
			Balance:      balance.String(),
		})
		return
	}

	balance, err := s.svc.AccumulatedBalance(r.Context(), through, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.balanceCache.Set(key, balance)
	writeJSON(w, http.StatusOK, balanceResponse{
		Through:      through.ISO(),
		BalanceCents: balance.Cents,
		Balance:      balance.String(),
	})
}

// cacheKey builds a deterministic key from the query shape.
func cacheKey(name string, from, to core.Date, filter ledger.EntryFilter) string {
	parts := []string{
		name,
		from.ISO(),
		to.ISO(),
		strings.Join(filter.Categories, ","),
		strings.Join(filter.ExcludeCategories, ","),
		strings.Join(filter.Wallets, ","),
		strings.Join(filter.Tags, ","),
	}
	return strings.Join(parts, "|")
}

func toSummaryResponse(from, to core.Date, result core.LedgerResult) summaryResponse {
	resp := summaryResponse{
		TotalIncomeCents:  result.TotalIncome.Cents,
		TotalExpenseCents: result.TotalExpense.Cents,
		NetBalanceCents:   result.NetBalance.Cents,
		ByDay:             toFlowTotals(result.ByDay),
		ByMonth:           toFlowTotals(result.ByMonth),
		ByCategory:        toFlowTotals(result.ByCategory),
		Occurrences:       make([]occurrenceJSON, 0, len(result.Occurrences)),
	}
	if !from.IsZero() {
		resp.From = from.ISO()
	}
	if !to.IsZero() {
		resp.To = to.ISO()
	}
	for _, o := range result.Occurrences {
		resp.Occurrences = append(resp.Occurrences, occurrenceJSON{
			Key:         o.Key,
			SourceID:    o.SourceID,
			Date:        o.Date.ISO(),
			Kind:        string(o.Kind),
			AmountCents: o.Amount.Cents,
			Amount:      o.Amount.String(),
			Category:    o.Category,
		})
	}
	if len(result.RuleErrors) > 0 {
		resp.RuleErrors = make(map[string]string, len(result.RuleErrors))
		for id, err := range result.RuleErrors {
			resp.RuleErrors[id] = err.Error()
		}
	}
	return resp
}

func toFlowTotals(buckets map[string]core.FlowTotal) map[string]flowTotalJSON {
	out := make(map[string]flowTotalJSON, len(buckets))
	for k, v := range buckets {
		out[k] = flowTotalJSON{
			IncomeCents:  v.Income.Cents,
			ExpenseCents: v.Expense.Cents,
			NetCents:     v.Net().Cents,
		}
	}
	return out
}
