package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spendboard/internal/core"
	applog "spendboard/internal/log"
	"spendboard/internal/store"
)

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil), Component: applog.ComponentHTTP})
}

func testRecords() []core.SpendRecord {
	return []core.SpendRecord{
		{Date: "2025-01-05", CloudProvider: core.ProviderAWS, Service: "EC2", Team: "Platform", Env: "prod", CostUSD: 120.50},
		{Date: "2025-01-06", CloudProvider: core.ProviderGCP, Service: "BigQuery", Team: "Data", Env: "prod", CostUSD: 80.25},
		{Date: "2025-03-01", CloudProvider: core.ProviderAWS, Service: "S3", Team: "Platform", Env: "staging", CostUSD: 10},
		{Date: "2025-03-15", CloudProvider: core.ProviderGCP, Service: "GCS", Team: "ML", Env: "dev", CostUSD: 42.42},
	}
}

func newTestServer(t *testing.T, opts Options) (*Server, *store.Store) {
	t.Helper()
	st := store.New()
	st.Publish(testRecords())
	srv := NewServer(":0", st, testLogger(), opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeRecords(t *testing.T, rec *httptest.ResponseRecorder) []core.SpendRecord {
	t.Helper()
	var records []core.SpendRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode records: %v (body %s)", err, rec.Body.String())
	}
	return records
}

func TestSpendUnfiltered(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := get(t, srv, "/api/spend")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeRecords(t, rec); len(got) != 4 {
		t.Fatalf("expected 4 records, got %d", len(got))
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestSpendFilters(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	got := decodeRecords(t, get(t, srv, "/api/spend?cloud=AWS&team=All"))
	if len(got) != 2 {
		t.Fatalf("expected 2 AWS records, got %d", len(got))
	}
	for _, r := range got {
		if r.CloudProvider != core.ProviderAWS {
			t.Fatalf("non-AWS record leaked: %+v", r)
		}
	}
	if got[0].Service != "EC2" || got[1].Service != "S3" {
		t.Fatalf("order not preserved: %+v", got)
	}

	got = decodeRecords(t, get(t, srv, "/api/spend?month=2025-03"))
	if len(got) != 2 {
		t.Fatalf("expected 2 March records, got %d", len(got))
	}

	got = decodeRecords(t, get(t, srv, "/api/spend?team=NoSuchTeam"))
	if len(got) != 0 {
		t.Fatalf("unknown team should match nothing, got %d", len(got))
	}
	// Zero matches must still serialize as an array.
	if body := get(t, srv, "/api/spend?team=NoSuchTeam").Body.String(); body != "[]\n" {
		t.Fatalf("empty result body = %q", body)
	}
}

func TestSummaryFiltered(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	var s core.Summary
	if err := json.Unmarshal(get(t, srv, "/api/summary").Body.Bytes(), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Total != "253.17" || s.AWS != "130.50" || s.GCP != "122.67" {
		t.Fatalf("summary = %+v", s)
	}

	// The summary honors the same filter specification as the spend route.
	if err := json.Unmarshal(get(t, srv, "/api/summary?month=2025-03").Body.Bytes(), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Total != "52.42" || s.AWS != "10.00" || s.GCP != "42.42" {
		t.Fatalf("filtered summary = %+v", s)
	}

	if err := json.Unmarshal(get(t, srv, "/api/summary?team=NoSuchTeam").Body.Bytes(), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Total != "0.00" || s.AWS != "0.00" || s.GCP != "0.00" {
		t.Fatalf("empty-match summary = %+v, want all 0.00", s)
	}
}

func TestBreakdown(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	var totals []core.DimensionTotal
	if err := json.Unmarshal(get(t, srv, "/api/breakdown?by=team").Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(totals) != 3 || totals[0].Key != "Platform" || totals[0].CostUSD != "130.50" {
		t.Fatalf("team breakdown = %+v", totals)
	}

	if err := json.Unmarshal(get(t, srv, "/api/breakdown?by=day&cloud=AWS").Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(totals) != 2 || totals[0].Key != "2025-01-05" || totals[1].Key != "2025-03-01" {
		t.Fatalf("day breakdown = %+v", totals)
	}

	if rec := get(t, srv, "/api/breakdown?by=region"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad dimension: status = %d", rec.Code)
	}
}

func TestSpendMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/spend", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.json")
	if err := store.WriteSnapshot(path, testRecords()[:1]); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	st := store.New()
	srv := NewServer(":0", st, testLogger(), Options{SnapshotPath: path})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reload status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeRecords(t, get(t, srv, "/api/spend")); len(got) != 1 {
		t.Fatalf("expected reloaded dataset of 1 record, got %d", len(got))
	}
}

func TestReloadFailureKeepsDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	st := store.New()
	st.Publish(testRecords())
	srv := NewServer(":0", st, testLogger(), Options{SnapshotPath: path})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decodeRecords(t, get(t, srv, "/api/spend")); len(got) != 4 {
		t.Fatalf("previous dataset must stay in service, got %d records", len(got))
	}
}

func TestReloadInvalidatesCachedResponses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.json")
	if err := store.WriteSnapshot(path, testRecords()); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	st := store.New()
	srv := NewServer(":0", st, testLogger(), Options{SnapshotPath: path, CacheTTL: time.Minute})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	if got := decodeRecords(t, get(t, srv, "/api/spend")); len(got) != 0 {
		t.Fatalf("expected empty dataset before reload, got %d", len(got))
	}
	req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
	srv.Server.Handler.ServeHTTP(httptest.NewRecorder(), req)

	// Same URL, new generation: the cached empty response must not be served.
	if got := decodeRecords(t, get(t, srv, "/api/spend")); len(got) != 4 {
		t.Fatalf("stale cached response served after reload, got %d records", len(got))
	}
}

func TestRateLimitOnReload(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimitPerMinute: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		srv.Server.Handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429 (codes %v)", codes[2], codes)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := get(t, srv, "/api/spend")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing X-Content-Type-Options header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("missing X-Frame-Options header")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	if rec := get(t, srv, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if rec := get(t, srv, "/readyz"); rec.Code != http.StatusOK {
		t.Fatalf("readyz = %d", rec.Code)
	}
}

func TestStaticSPAFallback(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := get(t, srv, "/some/client/route")
	if rec.Code != http.StatusOK {
		t.Fatalf("SPA fallback status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "<title>Spendboard</title>") {
		t.Fatal("fallback did not serve the dashboard shell")
	}
}
