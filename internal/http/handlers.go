package http

import (
	"net/http"
	"strings"

	"siuang/internal/aggregate"
	applog "siuang/internal/log"
)

// handleListTransactions serves the daily view together with the totals of
// the focused period.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	p, err := parseViewParams(r.URL.Query(), aggregate.Daily)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	txs, err := s.ledger.Transactions(r.Context(), p.Order, p.Focus)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	totals, err := s.ledger.Totals(r.Context(), aggregate.Daily, p.Focus)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sort":         string(p.Order),
		"transactions": s.transactionsJSON(txs),
		"totals":       s.totalsJSON(totals),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	tx, err := s.ledger.Add(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/transactions/"+tx.ID)
	writeJSON(w, http.StatusCreated, s.transactionJSON(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	tx, err := s.ledger.Edit(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.transactionJSON(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Delete(r.Context(), strings.TrimSpace(r.PathValue("id"))); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSummaries serves the weekly, monthly and yearly views. The whole
// ledger is aggregated and the focus only narrows what is shown.
func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	p, err := parseViewParams(r.URL.Query(), aggregate.Monthly)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	summaries, err := s.ledger.Summaries(r.Context(), p.Granularity, p.Order, p.Focus)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"view":      string(p.Granularity),
		"sort":      string(p.Order),
		"summaries": s.summariesJSON(summaries),
		"totals":    s.totalsJSON(aggregate.SummaryTotals(summaries, aggregate.Focus{})),
	})
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	p, err := parseViewParams(r.URL.Query(), aggregate.Daily)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	totals, err := s.ledger.Totals(r.Context(), p.Granularity, p.Focus)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"view":   string(p.Granularity),
		"totals": s.totalsJSON(totals),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	res, err := s.ledger.Export(r.Context(), req.StartDate, req.EndDate, sanitizeInput(req.Category))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	confirmation := "export request queued"
	if !res.Published {
		confirmation = "export prepared, delivery unavailable"
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Export served",
		applog.FieldCount, len(res.Transactions),
		"export_id", res.Request.ID)

	writeJSON(w, http.StatusOK, map[string]any{
		"export_id":    res.Request.ID,
		"count":        len(res.Transactions),
		"published":    res.Published,
		"confirmation": confirmation,
		"transactions": s.transactionsJSON(res.Transactions),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.Categories(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}
