package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"battery-passport/internal/assets"
	"battery-passport/internal/label"
	"battery-passport/internal/passport/application"
	"battery-passport/internal/passport/infrastructure/memory"
)

type testClock struct{}

func (testClock) Now() time.Time { return time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC) }

type fixture struct {
	repo    *memory.BatteryRepository
	api     *Handler
	web     *WebHandler
	export  *RegistryExportHandler
	service *application.PassportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.NewBatteryRepository()
	composer, err := label.NewComposer(label.DefaultLayout())
	if err != nil {
		t.Fatalf("new composer: %v", err)
	}
	store, err := assets.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new asset store: %v", err)
	}
	service, err := application.NewPassportService(
		application.Config{BaseURL: "http://passport.test"},
		repo, composer, label.NewPreviewGenerator(), store, testClock{},
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	resolver, err := application.NewVerificationService(repo)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	api, err := NewHandler(service, resolver, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	logger := log.New(testWriter{t}, "", 0)
	web, err := NewWebHandler(service, resolver, logger)
	if err != nil {
		t.Fatalf("new web handler: %v", err)
	}
	export, err := NewRegistryExportHandler(repo, nil)
	if err != nil {
		t.Fatalf("new export handler: %v", err)
	}
	return &fixture{repo: repo, api: api, web: web, export: export, service: service}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func generateForm(batchSize, isUnique string) url.Values {
	form := url.Values{}
	form.Set("producer_name", "Acme Cells GmbH")
	form.Set("epr_number", "DE-EPR-4711")
	form.Set("brand_name", "Acme")
	form.Set("battery_type", "cylindrical")
	form.Set("chemistry", "LiFePO4")
	form.Set("capacity", "3.2")
	form.Set("voltage", "3.6")
	form.Set("weight", "0.045")
	form.Set("batch_size", batchSize)
	if isUnique != "" {
		form.Set("is_unique", isUnique)
	}
	return form
}

func postForm(t *testing.T, handler http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestGenerateUniqueModeAndVerify(t *testing.T) {
	fx := newFixture(t)

	resp := postForm(t, fx.web, generateForm("2", "on"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if fx.repo.Count() != 2 {
		t.Fatalf("expected 2 records, got %d", fx.repo.Count())
	}

	records, err := fx.repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, record := range records {
		req := httptest.NewRequest(http.MethodGet, "/verify/"+record.ID, nil)
		verifyResp := httptest.NewRecorder()
		fx.web.ServeHTTP(verifyResp, req)
		if verifyResp.Code != http.StatusOK {
			t.Fatalf("verify %s: expected 200, got %d", record.ID, verifyResp.Code)
		}
		if !strings.Contains(verifyResp.Body.String(), record.ID) {
			t.Fatalf("verify page must show the id %s", record.ID)
		}
	}
	if !strings.Contains(resp.Body.String(), records[0].ID) {
		t.Fatalf("result page must show the preview id")
	}
}

func TestGenerateBatchModeCreatesOneRecord(t *testing.T) {
	fx := newFixture(t)

	resp := postForm(t, fx.web, generateForm("5", ""))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	records, err := fx.repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].BatchSize != 5 {
		t.Fatalf("expected batch size 5, got %d", records[0].BatchSize)
	}
}

func TestGenerateRejectsInvalidBatchSize(t *testing.T) {
	fx := newFixture(t)

	for _, size := range []string{"0", "-1"} {
		resp := postForm(t, fx.web, generateForm(size, "on"))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("batch size %s: expected 400, got %d", size, resp.Code)
		}
	}
	if fx.repo.Count() != 0 {
		t.Fatalf("rejected submissions must persist nothing, got %d", fx.repo.Count())
	}
}

func TestVerifyUnknownIDRendersCounterfeitPage(t *testing.T) {
	fx := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/verify/does-not-exist", nil)
	resp := httptest.NewRecorder()
	fx.web.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Counterfeit") {
		t.Fatalf("expected counterfeit warning, got %s", resp.Body.String())
	}
}

func TestAPIIssueAndLookup(t *testing.T) {
	fx := newFixture(t)

	body := `{"producer_name":"Acme Cells GmbH","epr_number":"DE-EPR-4711","brand_name":"Acme","batch_size":3,"is_unique":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/passports", strings.NewReader(body))
	resp := httptest.NewRecorder()
	fx.api.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var result application.IssueResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.RecordCount != 3 {
		t.Fatalf("expected 3 records, got %d", result.RecordCount)
	}
	if result.PreviewID != result.MasterID+"-U1" {
		t.Fatalf("expected preview id %s-U1, got %s", result.MasterID, result.PreviewID)
	}
	if len(result.VerifyURLs) != 3 || !strings.HasSuffix(result.VerifyURLs[2], result.MasterID+"-U3") {
		t.Fatalf("unexpected verify urls: %v", result.VerifyURLs)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/passports/"+result.PreviewID, nil)
	getResp := httptest.NewRecorder()
	fx.api.ServeHTTP(getResp, getReq)
	if getResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.Code)
	}
	var record RecordResponse
	if err := json.Unmarshal(getResp.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.ID != result.PreviewID || record.BatchSize != 1 {
		t.Fatalf("unexpected record: %+v", record)
	}

	missReq := httptest.NewRequest(http.MethodGet, "/api/v1/passports/"+result.MasterID+"-U4", nil)
	missResp := httptest.NewRecorder()
	fx.api.ServeHTTP(missResp, missReq)
	if missResp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for off-by-one suffix, got %d", missResp.Code)
	}
}

func TestAPIIssueValidationError(t *testing.T) {
	fx := newFixture(t)

	body := `{"producer_name":"Acme","epr_number":"DE-EPR-4711","brand_name":"Acme","batch_size":-1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/passports", strings.NewReader(body))
	resp := httptest.NewRecorder()
	fx.api.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if fx.repo.Count() != 0 {
		t.Fatalf("expected nothing persisted")
	}
}

func TestRegistryExportCSV(t *testing.T) {
	fx := newFixture(t)

	if resp := postForm(t, fx.web, generateForm("3", "on")); resp.Code != http.StatusOK {
		t.Fatalf("seed issuance failed: %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/registry/export.csv", nil)
	resp := httptest.NewRecorder()
	fx.export.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	rows, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" {
		t.Fatalf("expected header row, got %v", rows[0])
	}
}

func TestRegistryExportXLSX(t *testing.T) {
	fx := newFixture(t)

	if resp := postForm(t, fx.web, generateForm("2", "")); resp.Code != http.StatusOK {
		t.Fatalf("seed issuance failed: %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/registry/export.xlsx", nil)
	resp := httptest.NewRecorder()
	fx.export.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.Len() == 0 {
		t.Fatalf("expected workbook bytes")
	}
}
