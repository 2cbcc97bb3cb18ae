package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ancpricing/internal/domain"
	"ancpricing/internal/service"
	"ancpricing/internal/totals"
)

// PricingHandler handles pricing document endpoints.
type PricingHandler struct {
	pricingService service.PricingService
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(pricingService service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

// TotalsRequest is the body of the totals and CSV export endpoints.
type TotalsRequest struct {
	// Overrides maps "<tableId>:<itemIndex>" to a replacement selling price.
	Overrides map[string]float64 `json:"overrides"`
}

// PricingDocumentResponse is a stored record with its decoded document and report.
type PricingDocumentResponse struct {
	*domain.PricingRecord
	Document         *domain.PricingDocument  `json:"document"`
	ValidationReport *domain.ValidationReport `json:"validationReport"`
}

// ExportCheckResponse reports that a document may be exported.
type ExportCheckResponse struct {
	Exportable       bool                     `json:"exportable"`
	ValidationReport *domain.ValidationReport `json:"validationReport"`
}

func newPricingDocumentResponse(rec *domain.PricingRecord) (*PricingDocumentResponse, error) {
	doc, err := rec.Document()
	if err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", rec.ID, err)
	}
	report, err := rec.Report()
	if err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", rec.ID, err)
	}
	return &PricingDocumentResponse{PricingRecord: rec, Document: doc, ValidationReport: report}, nil
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid pricing document ID")
		return uuid.Nil, false
	}
	return id, true
}

// bindOverrides reads an optional TotalsRequest body. An empty body means no overrides.
func bindOverrides(c *gin.Context) (domain.PriceOverrideMap, bool) {
	var req TotalsRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return nil, false
		}
	}
	overrides, err := totals.ParseOverrides(req.Overrides)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return overrides, true
}

// Import handles POST /api/v1/pricing/import
// @Summary Import a pricing workbook
// @Description Upload an xlsx workbook, parse its pricing sheet and validate it.
// @Description In strict mode a failing validation rejects the import with 422.
// @Tags pricing
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook (xlsx or xlsm)"
// @Param strict formData bool false "Reject the import when validation fails"
// @Param sheet formData string false "Sheet to try first"
// @Success 201 {object} Response{data=PricingDocumentResponse} "Imported"
// @Failure 400 {object} ErrorResponseBody "Missing file, unsupported type or unreadable workbook"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "No pricing sheet or strict validation failed"
// @Router /pricing/import [post]
func (h *PricingHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	input := service.ImportInput{
		FileName:       header.Filename,
		ContentType:    header.Header.Get("Content-Type"),
		PreferredSheet: c.PostForm("sheet"),
	}
	if raw := c.PostForm("strict"); raw != "" {
		strict, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "strict must be a boolean")
			return
		}
		input.Mode = domain.ValidationModeAdvisory
		if strict {
			input.Mode = domain.ValidationModeStrict
		}
	}

	input.FileBytes, err = io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "failed to read uploaded file")
		return
	}

	rec, err := h.pricingService.Import(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	resp, err := newPricingDocumentResponse(rec)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, resp)
}

// List handles GET /api/v1/pricing
// @Summary List pricing documents
// @Tags pricing
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.PricingRecord,meta=PagMeta} "List of pricing documents"
// @Router /pricing [get]
func (h *PricingHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	recs, total, err := h.pricingService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, recs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/pricing/:id
// @Summary Get a pricing document
// @Tags pricing
// @Produce json
// @Param id path string true "Pricing document ID"
// @Success 200 {object} Response{data=PricingDocumentResponse} "Pricing document"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Router /pricing/{id} [get]
func (h *PricingHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.pricingService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	resp, err := newPricingDocumentResponse(rec)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, resp)
}

// GetValidation handles GET /api/v1/pricing/:id/validation
// @Summary Get the stored validation report
// @Tags pricing
// @Produce json
// @Param id path string true "Pricing document ID"
// @Success 200 {object} Response{data=domain.ValidationReport} "Validation report"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Router /pricing/{id}/validation [get]
func (h *PricingHandler) GetValidation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.pricingService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	report, err := rec.Report()
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, report)
}

// ComputeTotals handles POST /api/v1/pricing/:id/totals
// @Summary Compute rendered totals
// @Description Round-then-sum totals of every table, with optional per-item price overrides.
// @Tags pricing
// @Accept json
// @Produce json
// @Param id path string true "Pricing document ID"
// @Param body body TotalsRequest false "Price overrides"
// @Success 200 {object} Response{data=domain.DocumentTotals} "Totals"
// @Failure 400 {object} ErrorResponseBody "Invalid override key"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Router /pricing/{id}/totals [post]
func (h *PricingHandler) ComputeTotals(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	overrides, ok := bindOverrides(c)
	if !ok {
		return
	}

	dt, err := h.pricingService.ComputeTotals(c.Request.Context(), id, overrides)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, dt)
}

// Revalidate handles POST /api/v1/pricing/:id/revalidate
// @Summary Re-parse a document with the current parser
// @Tags pricing
// @Produce json
// @Param id path string true "Pricing document ID"
// @Success 200 {object} Response{data=PricingDocumentResponse} "Revalidated document"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Router /pricing/{id}/revalidate [post]
func (h *PricingHandler) Revalidate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.pricingService.Revalidate(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	resp, err := newPricingDocumentResponse(rec)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, resp)
}

// ExportCheck handles GET /api/v1/pricing/:id/export-check
// @Summary Check whether a document may be exported
// @Tags pricing
// @Produce json
// @Param id path string true "Pricing document ID"
// @Success 200 {object} Response{data=ExportCheckResponse} "Exportable"
// @Failure 409 {object} ErrorResponseBody "Report produced by an older parser"
// @Failure 422 {object} ErrorResponseBody "Stored report failed"
// @Router /pricing/{id}/export-check [get]
func (h *PricingHandler) ExportCheck(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	report, err := h.pricingService.CheckExportable(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ExportCheckResponse{Exportable: true, ValidationReport: report})
}

// ExportCSV handles POST /api/v1/pricing/:id/export.csv
// @Summary Export rendered totals as CSV
// @Tags pricing
// @Accept json
// @Produce text/csv
// @Param id path string true "Pricing document ID"
// @Param body body TotalsRequest false "Price overrides"
// @Success 200 {file} file "CSV file"
// @Failure 409 {object} ErrorResponseBody "Report produced by an older parser"
// @Failure 422 {object} ErrorResponseBody "Stored report failed"
// @Router /pricing/{id}/export.csv [post]
func (h *PricingHandler) ExportCSV(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	overrides, ok := bindOverrides(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	filename, err := h.pricingService.ExportCSV(c.Request.Context(), id, overrides, &buf)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GetSourceURL handles GET /api/v1/pricing/:id/source
// @Summary Get a presigned download URL for the archived workbook
// @Tags pricing
// @Produce json
// @Param id path string true "Pricing document ID"
// @Success 200 {object} Response "Presigned URL"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Router /pricing/{id}/source [get]
func (h *PricingHandler) GetSourceURL(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	url, err := h.pricingService.GetSourceURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}

// Delete handles DELETE /api/v1/pricing/:id
// @Summary Delete a pricing document and its archived workbook
// @Tags pricing
// @Produce json
// @Param id path string true "Pricing document ID"
// @Success 200 {object} Response "Deleted"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Router /pricing/{id} [delete]
func (h *PricingHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.pricingService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	log.Printf("pricingHandler.Delete: deleted pricing document %s", id)
	RespondOK(c, gin.H{"message": "pricing document deleted"})
}
