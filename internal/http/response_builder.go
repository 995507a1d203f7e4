package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"siuang/internal/aggregate"
	"siuang/internal/core"
	"siuang/internal/ledger"
	applog "siuang/internal/log"
)

type transactionResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	AmountMinor int64  `json:"amount_minor"`
	Amount      string `json:"amount"`
	Note        string `json:"note"`
	IsIncome    bool   `json:"is_income"`
	Kind        string `json:"kind"`
}

type summaryResponse struct {
	Granularity  string `json:"granularity"`
	Year         int    `json:"year"`
	Period       int    `json:"period"`
	Label        string `json:"label"`
	IncomeMinor  int64  `json:"total_income_minor"`
	Income       string `json:"total_income"`
	ExpenseMinor int64  `json:"total_expense_minor"`
	Expense      string `json:"total_expense"`
	BalanceMinor int64  `json:"balance_minor"`
	Balance      string `json:"balance"`
}

type totalsResponse struct {
	IncomeMinor  int64  `json:"income_minor"`
	Income       string `json:"income"`
	ExpenseMinor int64  `json:"expense_minor"`
	Expense      string `json:"expense"`
	BalanceMinor int64  `json:"balance_minor"`
	Balance      string `json:"balance"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) transactionJSON(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date.String(),
		Category:    tx.Category,
		AmountMinor: tx.Amount.Cents,
		Amount:      tx.Amount.Display(s.currency),
		Note:        tx.Note,
		IsIncome:    tx.IsIncome,
		Kind:        tx.Kind(),
	}
}

func (s *Server) transactionsJSON(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, s.transactionJSON(tx))
	}
	return out
}

func (s *Server) summariesJSON(summaries []aggregate.Summary) []summaryResponse {
	out := make([]summaryResponse, 0, len(summaries))
	for _, sm := range summaries {
		bal := sm.Balance()
		out = append(out, summaryResponse{
			Granularity:  string(sm.Granularity),
			Year:         sm.Year,
			Period:       sm.Period,
			Label:        summaryLabel(sm),
			IncomeMinor:  sm.TotalIncome.Cents,
			Income:       sm.TotalIncome.Display(s.currency),
			ExpenseMinor: sm.TotalExpense.Cents,
			Expense:      sm.TotalExpense.Display(s.currency),
			BalanceMinor: bal.Cents,
			Balance:      bal.Display(s.currency),
		})
	}
	return out
}

func (s *Server) totalsJSON(t aggregate.Totals) totalsResponse {
	bal := t.Balance()
	return totalsResponse{
		IncomeMinor:  t.Income.Cents,
		Income:       t.Income.Display(s.currency),
		ExpenseMinor: t.Expense.Cents,
		Expense:      t.Expense.Display(s.currency),
		BalanceMinor: bal.Cents,
		Balance:      bal.Display(s.currency),
	}
}

// summaryLabel renders a bucket the way the header shows it.
func summaryLabel(sm aggregate.Summary) string {
	switch sm.Granularity {
	case aggregate.Weekly:
		return fmt.Sprintf("Week %d, %d", sm.Period, sm.Year)
	case aggregate.Monthly:
		return time.Month(sm.Period+1).String() + " " + strconv.Itoa(sm.Year)
	default:
		return strconv.Itoa(sm.Year)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	writeJSON(w, status, errorResponse{Error: msg, Fields: fields})
}

// writeServiceError maps domain errors to status codes: validation problems
// are 422, malformed input 400, unknown ids 404, anything else 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if fields := validationErrors(err); fields != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation failed", fields)
		return
	}

	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, aggregate.ErrUnsupportedGranularity),
		errors.Is(err, aggregate.ErrUnsupportedSortOrder):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, "transaction not found", nil)
	case errors.Is(err, ledger.ErrDuplicateID):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrNegativeAmount),
		errors.Is(err, core.ErrEmptyID),
		errors.Is(err, core.ErrCategoryTooLong),
		errors.Is(err, core.ErrNoteTooLong),
		errors.Is(err, aggregate.ErrInvalidRange):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err.Error(),
			applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}
