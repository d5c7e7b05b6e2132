package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agenticerp/internal/reports"
	"agenticerp/internal/router"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRouter struct {
	resp router.Response
	err  error
	last string
}

func (f *fakeRouter) Route(ctx context.Context, text string) (router.Response, error) {
	f.last = text
	return f.resp, f.err
}

type fakeReports struct {
	err *reports.Error
}

func (f fakeReports) Build(ctx context.Context, kind reports.Kind) reports.Result {
	if f.err != nil {
		return reports.Result{Kind: kind, Err: f.err}
	}
	fs := &reports.FinancialSummary{
		TotalRevenue: decimal.RequireFromString("25"),
		TotalCost:    decimal.RequireFromString("10"),
		TotalProfit:  decimal.RequireFromString("15"),
	}
	return reports.Result{Kind: kind, Data: fs, Report: reports.RenderFinancial(fs)}
}

func (f fakeReports) BuildAll(ctx context.Context, kinds ...reports.Kind) []reports.Result {
	if len(kinds) == 0 {
		kinds = reports.Kinds()
	}
	out := make([]reports.Result, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, f.Build(ctx, k))
	}
	return out
}

type fakeTables struct {
	tables []string
	err    error
}

func (f fakeTables) ListTables(ctx context.Context) ([]string, error) { return f.tables, f.err }

func newTestServer(deps Deps) *Server {
	if deps.Router == nil {
		deps.Router = &fakeRouter{}
	}
	if deps.Reports == nil {
		deps.Reports = fakeReports{}
	}
	if deps.Tables == nil {
		deps.Tables = fakeTables{tables: []string{"customers", "orders"}}
	}
	return New("127.0.0.1:0", deps)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, rdr))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRoute(t *testing.T) {
	s := newTestServer(Deps{})

	rec := do(t, s, http.MethodPost, "/api/v1/route", `{"text":"order invoice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "sales", out["domain"])
	assert.Equal(t, float64(1), out["confidence"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRoute_BadInput(t *testing.T) {
	s := newTestServer(Deps{})

	rec := do(t, s, http.MethodPost, "/api/v1/route", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text is required", decode(t, rec)["error"])

	rec = do(t, s, http.MethodPost, "/api/v1/route", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/route", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWrongMethodIsNotAllowed(t *testing.T) {
	s := newTestServer(Deps{})

	tests := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/route"},
		{http.MethodGet, "/api/v1/ask"},
		{http.MethodPost, "/api/v1/reports/sales"},
		{http.MethodDelete, "/api/v1/tables"},
	}
	for _, tt := range tests {
		rec := do(t, s, tt.method, tt.path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", tt.method, tt.path)
	}

	rec := do(t, s, http.MethodGet, "/api/v1/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAsk(t *testing.T) {
	fr := &fakeRouter{resp: router.Response{Domain: router.DomainFinance, Confidence: 1, Agent: "Finance Agent", Text: "FINANCIAL SUMMARY"}}
	s := newTestServer(Deps{Router: fr})

	rec := do(t, s, http.MethodPost, "/api/v1/ask", `{"text":"  pay the invoice "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pay the invoice", fr.last)
	out := decode(t, rec)
	assert.Equal(t, "finance", out["domain"])
	assert.Equal(t, "Finance Agent", out["agent"])
}

func TestAsk_ContextError(t *testing.T) {
	fr := &fakeRouter{err: context.Canceled}
	s := newTestServer(Deps{Router: fr})

	rec := do(t, s, http.MethodPost, "/api/v1/ask", `{"text":"stock"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReport(t *testing.T) {
	s := newTestServer(Deps{})

	rec := do(t, s, http.MethodGet, "/api/v1/reports/financial", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "financial", out["kind"])
	data := out["data"].(map[string]any)
	assert.Equal(t, "15", data["total_profit"])
	assert.Contains(t, out["report"], "Total Profit: $15.00")
}

func TestReport_All(t *testing.T) {
	s := newTestServer(Deps{})

	rec := do(t, s, http.MethodGet, "/api/v1/reports/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 4)
	assert.Equal(t, "sales", out[0]["kind"])
}

func TestReport_Errors(t *testing.T) {
	s := newTestServer(Deps{})
	rec := do(t, s, http.MethodGet, "/api/v1/reports/hr", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s = newTestServer(Deps{Reports: fakeReports{err: &reports.Error{Kind: reports.ErrorStore, Message: "no such table: orders"}}})
	rec = do(t, s, http.MethodGet, "/api/v1/reports/sales", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"error": "no such table: orders"}, decode(t, rec))

	rec = do(t, s, http.MethodGet, "/api/v1/reports/all", "")
	assert.Equal(t, http.StatusMultiStatus, rec.Code)

	s = newTestServer(Deps{Reports: fakeReports{err: &reports.Error{Kind: reports.ErrorTimeout, Message: "deadline"}}})
	rec = do(t, s, http.MethodGet, "/api/v1/reports/product", "")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestTablesAndHealth(t *testing.T) {
	s := newTestServer(Deps{})

	rec := do(t, s, http.MethodGet, "/api/v1/tables", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"customers", "orders"}, decode(t, rec)["tables"])

	rec = do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	s = newTestServer(Deps{Tables: fakeTables{err: errors.New("database is closed")}})
	rec = do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/v1/tables", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(Deps{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/route", bytes.NewBufferString(`{}`))
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", decode(t, rec)["request_id"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(Deps{Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "erp_metrics 1\n")
	})})

	rec := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "erp_metrics 1\n", rec.Body.String())
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(Deps{Shutdown: time.Second})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
