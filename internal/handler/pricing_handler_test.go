package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ancpricing/internal/domain"
	"ancpricing/internal/handler"
	"ancpricing/internal/pricing"
	"ancpricing/internal/router"
	"ancpricing/internal/service"
	"ancpricing/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func setupRouter() (*gin.Engine, *mocks.MockPricingService) {
	svc := new(mocks.MockPricingService)
	r := router.Setup(handler.NewPricingHandler(svc), handler.NewHealthHandler(stubPinger{}), nil)
	return r, svc
}

func sampleRecord(t *testing.T, status domain.ValidationStatus) *domain.PricingRecord {
	t.Helper()
	doc := &domain.PricingDocument{
		Currency:      "USD",
		DocumentTotal: 1000,
		SourceSheet:   "Margin Analysis",
		Tables: []domain.PricingTable{{
			ID:         "table-1",
			Name:       "Main Display",
			Items:      []domain.PricingLineItem{{Description: "LED Panels", SellingPrice: 1000}},
			Subtotal:   1000,
			GrandTotal: 1000,
			Currency:   "USD",
		}},
	}
	report := &domain.ValidationReport{Status: status, Errors: []string{}, ParserVersion: pricing.ParserVersion}
	if status == domain.ValidationFail {
		report.Errors = []string{"Main Display: subtotal mismatch"}
	}
	rec := &domain.PricingRecord{ID: uuid.New(), Name: "Arena Bid"}
	require.NoError(t, rec.SetResult(doc, report))
	return rec
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pricing.ParserVersion, decode(t, w)["parserVersion"])

	down := handler.NewHealthHandler(stubPinger{err: errors.New("refused")})
	w = httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	down.Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestImport_Success(t *testing.T) {
	r, svc := setupRouter()
	rec := sampleRecord(t, domain.ValidationPass)

	svc.On("Import", mock.Anything, mock.MatchedBy(func(in service.ImportInput) bool {
		return in.FileName == "bid.xlsx" && string(in.FileBytes) == "PK-bytes" &&
			in.Mode == domain.ValidationModeStrict && in.PreferredSheet == "Margin Analysis"
	})).Return(rec, nil)

	body, ct := multipartBody(t, "bid.xlsx", []byte("PK-bytes"), map[string]string{"strict": "true", "sheet": "Margin Analysis"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/import", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, rec.ID.String(), data["id"])
	assert.Equal(t, "PASS", data["validationStatus"])
	assert.NotNil(t, data["document"])
	assert.Equal(t, "PASS", data["validationReport"].(map[string]any)["status"])
	svc.AssertExpectations(t)
}

func TestImport_DefaultModeWhenStrictOmitted(t *testing.T) {
	r, svc := setupRouter()
	svc.On("Import", mock.Anything, mock.MatchedBy(func(in service.ImportInput) bool {
		return in.Mode == ""
	})).Return(sampleRecord(t, domain.ValidationFail), nil)

	body, ct := multipartBody(t, "bid.xlsx", []byte("PK"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/import", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestImport_MissingFile(t *testing.T) {
	r, svc := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/import", strings.NewReader(""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Import", mock.Anything, mock.Anything)
}

func TestImport_InvalidStrictFlag(t *testing.T) {
	r, svc := setupRouter()

	body, ct := multipartBody(t, "bid.xlsx", []byte("PK"), map[string]string{"strict": "maybe"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/import", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Import", mock.Anything, mock.Anything)
}

func TestImport_StrictFailureReturnsReport(t *testing.T) {
	r, svc := setupRouter()
	report := &domain.ValidationReport{
		Status:        domain.ValidationFail,
		Errors:        []string{"Main Display: subtotal 999.00 does not match item sum 300.98"},
		ParserVersion: pricing.ParserVersion,
	}
	svc.On("Import", mock.Anything, mock.AnythingOfType("service.ImportInput")).
		Return(nil, &domain.ValidationFailedError{Report: report})

	body, ct := multipartBody(t, "bid.xlsx", []byte("PK"), map[string]string{"strict": "1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/import", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	apiErr := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", apiErr["code"])
	details := apiErr["details"].(map[string]any)
	assert.Equal(t, "FAIL", details["status"])
	assert.Len(t, details["errors"], 1)
}

func TestImport_MapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrInvalidWorkbook, http.StatusBadRequest, "INVALID_WORKBOOK"},
		{domain.ErrNoPricingSheet, http.StatusUnprocessableEntity, "NO_PRICING_SHEET"},
		{domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			r, svc := setupRouter()
			svc.On("Import", mock.Anything, mock.Anything).Return(nil, tc.err)

			body, ct := multipartBody(t, "bid.xlsx", []byte("PK"), nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/import", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decode(t, w)["error"].(map[string]any)["code"])
		})
	}
}

func TestList_Paginated(t *testing.T) {
	r, svc := setupRouter()
	rec := sampleRecord(t, domain.ValidationPass)
	svc.On("List", mock.Anything, 10, 100).Return([]domain.PricingRecord{*rec}, 11, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing?offset=10&limit=100", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Len(t, resp["data"], 1)
	meta := resp["meta"].(map[string]any)
	assert.Equal(t, float64(11), meta["total"])
	assert.Equal(t, float64(100), meta["limit"])
}

func TestList_ClampsLimit(t *testing.T) {
	r, svc := setupRouter()
	svc.On("List", mock.Anything, 0, 20).Return([]domain.PricingRecord{}, 0, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing?offset=-5&limit=500", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGetByID(t *testing.T) {
	r, svc := setupRouter()
	rec := sampleRecord(t, domain.ValidationPass)
	svc.On("GetByID", mock.Anything, rec.ID).Return(rec, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/"+rec.ID.String(), http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	doc := data["document"].(map[string]any)
	assert.Equal(t, "Margin Analysis", doc["sourceSheet"])
	assert.NotContains(t, data, "documentData")
}

func TestGetByID_InvalidAndMissing(t *testing.T) {
	r, svc := setupRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/not-a-uuid", http.NoBody))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := uuid.New()
	svc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrDocumentNotFound)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/"+id.String(), http.NoBody))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "DOCUMENT_NOT_FOUND", decode(t, w)["error"].(map[string]any)["code"])
}

func TestGetValidation(t *testing.T) {
	r, svc := setupRouter()
	rec := sampleRecord(t, domain.ValidationFail)
	svc.On("GetByID", mock.Anything, rec.ID).Return(rec, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/"+rec.ID.String()+"/validation", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "FAIL", data["status"])
	assert.Equal(t, pricing.ParserVersion, data["parserVersion"])
}

func TestComputeTotals_WithOverrides(t *testing.T) {
	r, svc := setupRouter()
	id := uuid.New()
	overrides := domain.PriceOverrideMap{{TableID: "table-1", ItemIndex: 0}: 99999}
	svc.On("ComputeTotals", mock.Anything, id, overrides).
		Return(&domain.DocumentTotals{DocumentTotal: 99999, Currency: "USD", Precision: 2}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/"+id.String()+"/totals",
		strings.NewReader(`{"overrides": {"table-1:0": 99999}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(99999), data["documentTotal"])
	svc.AssertExpectations(t)
}

func TestComputeTotals_EmptyBody(t *testing.T) {
	r, svc := setupRouter()
	id := uuid.New()
	svc.On("ComputeTotals", mock.Anything, id, domain.PriceOverrideMap(nil)).
		Return(&domain.DocumentTotals{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/pricing/"+id.String()+"/totals", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestComputeTotals_InvalidOverrideKey(t *testing.T) {
	r, svc := setupRouter()
	id := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/"+id.String()+"/totals",
		strings.NewReader(`{"overrides": {"table-1": 5}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_OVERRIDE_KEY", decode(t, w)["error"].(map[string]any)["code"])
	svc.AssertNotCalled(t, "ComputeTotals", mock.Anything, mock.Anything, mock.Anything)
}

func TestRevalidate(t *testing.T) {
	r, svc := setupRouter()
	rec := sampleRecord(t, domain.ValidationPass)
	svc.On("Revalidate", mock.Anything, rec.ID).Return(rec, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/pricing/"+rec.ID.String()+"/revalidate", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestRevalidate_SourceMissing(t *testing.T) {
	r, svc := setupRouter()
	id := uuid.New()
	svc.On("Revalidate", mock.Anything, id).
		Return(nil, fmt.Errorf("downloading source: %w", domain.ErrSourceNotFound))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/pricing/"+id.String()+"/revalidate", http.NoBody))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SOURCE_NOT_FOUND", decode(t, w)["error"].(map[string]any)["code"])
}

func TestExportCheck(t *testing.T) {
	r, svc := setupRouter()
	okID, staleID := uuid.New(), uuid.New()
	svc.On("CheckExportable", mock.Anything, okID).
		Return(&domain.ValidationReport{Status: domain.ValidationPass, ParserVersion: pricing.ParserVersion}, nil)
	svc.On("CheckExportable", mock.Anything, staleID).
		Return(nil, domain.ErrValidationStale)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/"+okID.String()+"/export-check", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["data"].(map[string]any)["exportable"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/"+staleID.String()+"/export-check", http.NoBody))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "VALIDATION_STALE", decode(t, w)["error"].(map[string]any)["code"])
}

func TestExportCSV(t *testing.T) {
	r, svc := setupRouter()
	id := uuid.New()
	svc.On("ExportCSV", mock.Anything, id, domain.PriceOverrideMap(nil), mock.Anything).
		Return("Table ID,Table\n", "Arena_Bid_totals_2025-03-09.csv", nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/pricing/"+id.String()+"/export.csv", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Arena_Bid_totals_2025-03-09.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Table ID,Table\n", w.Body.String())
}

func TestExportCSV_RejectedReport(t *testing.T) {
	r, svc := setupRouter()
	id := uuid.New()
	report := &domain.ValidationReport{Status: domain.ValidationFail, Errors: []string{"bad"}}
	svc.On("ExportCSV", mock.Anything, id, domain.PriceOverrideMap(nil), mock.Anything).
		Return("", "", &domain.ValidationFailedError{Report: report})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/pricing/"+id.String()+"/export.csv", http.NoBody))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestGetSourceURL(t *testing.T) {
	r, svc := setupRouter()
	id := uuid.New()
	svc.On("GetSourceURL", mock.Anything, id).Return("https://signed.example/x", nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/"+id.String()+"/source", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://signed.example/x", decode(t, w)["data"].(map[string]any)["url"])
}

func TestDelete(t *testing.T) {
	r, svc := setupRouter()
	id := uuid.New()
	svc.On("Delete", mock.Anything, id).Return(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/pricing/"+id.String(), http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
