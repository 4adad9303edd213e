package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

func newTestRouter(backend Backend) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(nil, backend)
}

func doRequest(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAddLineHandler(t *testing.T) {
	backend := &stubBackend{}
	r := newTestRouter(backend)

	rec := doRequest(r, http.MethodPost, "/addLine", `{"line":"101 A3;7/3/24 MK 0800 0900 1100"}`,
		map[string]string{IdempotencyHeader: "abc"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if len(backend.keys) != 1 || backend.keys[0] != "abc" {
		t.Fatalf("idempotency key not forwarded: %v", backend.keys)
	}

	var resp struct {
		Status    string                             `json:"status"`
		Outcome   string                             `json:"outcome"`
		Table     []map[string]any                   `json:"table"`
		Frontiers map[string]map[string][][2]float64 `json:"frontiers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Outcome != "appended" {
		t.Fatalf("unexpected envelope %+v", resp)
	}
	if len(resp.Table) != 1 || resp.Table[0]["date"] != "07/03/24" || resp.Table[0]["batchId"] != float64(101) {
		t.Fatalf("unexpected table %v", resp.Table)
	}
	if resp.Table[0]["operator"] != nil {
		t.Fatalf("absent operator should be null, got %v", resp.Table[0]["operator"])
	}
	primer := resp.Frontiers["A3"]["primer"]
	if len(primer) != 2 || primer[0] != [2]float64{2, 0.5} {
		t.Fatalf("unexpected primer frontier %v", primer)
	}
	if topcoat, ok := resp.Frontiers["A3"]["topcoat"]; !ok || len(topcoat) != 0 {
		t.Fatalf("expected empty topcoat frontier, got %v (present=%v)", topcoat, ok)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestAddLineHandlerErrors(t *testing.T) {
	r := newTestRouter(&stubBackend{})

	if rec := doRequest(r, http.MethodPost, "/addLine", `{"line":"bad"}`, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed line: expected 400, got %d", rec.Code)
	}
	if rec := doRequest(r, http.MethodPost, "/addLine", `{}`, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing line: expected 400, got %d", rec.Code)
	}

	failing := newTestRouter(&stubBackend{err: errors.New("disk full")})
	rec := doRequest(failing, http.MethodPost, "/addLine", `{"line":"1 A"}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("storage failure: expected 500, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != StatusError || resp.Error != "disk full" {
		t.Fatalf("unexpected error body %+v", resp)
	}
}

func TestTableAndSummaryHandlers(t *testing.T) {
	r := newTestRouter(&stubBackend{})

	rec := doRequest(r, http.MethodGet, "/table", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("table: unexpected status %d", rec.Code)
	}
	var table AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &table); err != nil {
		t.Fatalf("decode table: %v", err)
	}
	if len(table.Table) != 1 || table.Table[0].RecommendedLag == nil || *table.Table[0].RecommendedLag != 0.5 {
		t.Fatalf("unexpected table %+v", table.Table)
	}

	rec = doRequest(r, http.MethodGet, "/summary", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: unexpected status %d", rec.Code)
	}
	var sum SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(sum.Groups) != 1 || sum.Groups[0].TotalAvoidable != 0.5 {
		t.Fatalf("unexpected summary %+v", sum.Groups)
	}
}

func TestExportHandlers(t *testing.T) {
	r := newTestRouter(&stubBackend{})

	rec := doRequest(r, http.MethodGet, "/exportExcel", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx: unexpected status %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "paint_records.xlsx") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("records")
	if err != nil || len(rows) != 2 {
		t.Fatalf("expected header and one row, got %v (%v)", rows, err)
	}

	rec = doRequest(r, http.MethodGet, "/export.csv", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv: unexpected status %d", rec.Code)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "101,A3,primer,07/03/24,,0800,0900,1100,") {
		t.Fatalf("unexpected csv %q", rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(&stubBackend{})
	rec := doRequest(r, http.MethodGet, "/healthz", "", map[string]string{RequestIDHeader: "req-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "req-1" {
		t.Fatalf("request id not echoed: %q", got)
	}
}
