package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CheckResult is the detail of a single validation check.
type CheckResult struct {
	RuleKey       string             `json:"ruleKey"`
	Severity      ValidationSeverity `json:"severity"`
	Passed        bool               `json:"passed"`
	FieldPath     string             `json:"fieldPath"`
	ExpectedValue string             `json:"expectedValue"`
	ActualValue   string             `json:"actualValue"`
	Message       string             `json:"message"`
}

// ValidationReport is produced once per parse and persisted with the document.
// ParserVersion lets consumers detect reports produced by an older algorithm.
type ValidationReport struct {
	Status        ValidationStatus `json:"status"`
	Errors        []string         `json:"errors"`
	Warnings      []string         `json:"warnings,omitempty"`
	ParserVersion string           `json:"parserVersion"`
	Checks        []CheckResult    `json:"checks,omitempty"`
}

// Passed reports whether the report status is PASS.
func (r *ValidationReport) Passed() bool { return r != nil && r.Status == ValidationPass }

// PricingRecord is a persisted pricing document with its validation report.
type PricingRecord struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	Name             string           `db:"name" json:"name"`
	SourceFilename   string           `db:"source_filename" json:"sourceFilename"`
	SourceKey        string           `db:"source_key" json:"sourceKey"`
	SourceSize       int64            `db:"source_size" json:"sourceSize"`
	SheetName        string           `db:"sheet_name" json:"sheetName"`
	Currency         string           `db:"currency" json:"currency"`
	DocumentTotal    float64          `db:"document_total" json:"documentTotal"`
	TableCount       int              `db:"table_count" json:"tableCount"`
	ValidationStatus ValidationStatus `db:"validation_status" json:"validationStatus"`
	ParserVersion    string           `db:"parser_version" json:"parserVersion"`
	DocumentData     json.RawMessage  `db:"document_data" json:"-"`
	ValidationData   json.RawMessage  `db:"validation_report" json:"-"`
	ClaimedAt        *time.Time       `db:"claimed_at" json:"-"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
}

// Document decodes the stored pricing document.
func (r *PricingRecord) Document() (*PricingDocument, error) {
	var doc PricingDocument
	if err := json.Unmarshal(r.DocumentData, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Report decodes the stored validation report.
func (r *PricingRecord) Report() (*ValidationReport, error) {
	var rep ValidationReport
	if err := json.Unmarshal(r.ValidationData, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// SetResult encodes a document and report into the record and refreshes the
// denormalized columns.
func (r *PricingRecord) SetResult(doc *PricingDocument, report *ValidationReport) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return err
	}
	r.DocumentData = docJSON
	r.ValidationData = reportJSON
	r.SheetName = doc.SourceSheet
	r.Currency = doc.Currency
	r.DocumentTotal = doc.DocumentTotal
	r.TableCount = len(doc.Tables)
	r.ValidationStatus = report.Status
	r.ParserVersion = report.ParserVersion
	return nil
}
