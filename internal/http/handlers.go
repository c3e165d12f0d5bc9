package http

import (
	"net/http"

	"spendboard/internal/core"
	applog "spendboard/internal/log"
)

// handleSpend returns the filtered record subsequence in original order.
// No pagination: the dashboard always receives the full matching set.
func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := s.store.Snapshot()
	f := parseFilter(r)
	key := s.cacheKey(snap.Generation, f.Key())

	if records, found := s.spendCache.Get(key); found {
		writeJSON(w, http.StatusOK, records)
		return
	}

	records := f.Apply(snap.Records)
	s.spendCache.Set(key, records)
	writeJSON(w, http.StatusOK, records)
}

// handleSummary returns {total, aws, gcp} as two-decimal strings, computed
// over the same filtered subsequence the spend endpoint would return.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := s.store.Snapshot()
	f := parseFilter(r)
	key := s.cacheKey(snap.Generation, f.Key())

	if summary, found := s.summaryCache.Get(key); found {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary := core.Summarize(f.Apply(snap.Records))
	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

// handleBreakdown returns one dimension rollup for chart rendering:
// by=day (ascending date), by=cloud (by tag), by=team (descending cost).
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	by := r.URL.Query().Get("by")
	var roll func([]core.SpendRecord) []core.DimensionTotal
	switch by {
	case "day":
		roll = core.TotalByDay
	case "cloud":
		roll = core.TotalByCloud
	case "team":
		roll = core.TotalByTeam
	default:
		writeJSONError(w, http.StatusBadRequest, "by must be one of: day, cloud, team")
		return
	}

	snap := s.store.Snapshot()
	f := parseFilter(r)
	key := s.cacheKey(snap.Generation, by+"|"+f.Key())

	if totals, found := s.rollupCache.Get(key); found {
		writeJSON(w, http.StatusOK, totals)
		return
	}

	totals := roll(f.Apply(snap.Records))
	s.rollupCache.Set(key, totals)
	writeJSON(w, http.StatusOK, totals)
}

// handleReload re-reads the snapshot artifact and swaps it in atomically.
// On failure the previous dataset stays in service.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.opts.SnapshotPath == "" {
		writeJSONError(w, http.StatusConflict, "no snapshot path configured")
		return
	}

	snap, err := s.store.LoadFile(s.opts.SnapshotPath)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Snapshot reload failed",
			applog.FieldRequestID, requestIDFromContext(r.Context()),
			applog.FieldError, err,
			applog.FieldSnapshot, s.opts.SnapshotPath)
		writeJSONError(w, http.StatusInternalServerError, "reload failed; previous dataset still in service")
		return
	}

	s.logger.InfoContext(r.Context(), "Snapshot reloaded",
		applog.FieldSnapshot, s.opts.SnapshotPath,
		applog.FieldRecords, len(snap.Records),
		applog.FieldGeneration, snap.Generation)
	writeJSON(w, http.StatusOK, map[string]any{
		"records":    len(snap.Records),
		"generation": snap.Generation,
	})
}
