package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDocumentNotFound    = errors.New("pricing document not found")
	ErrSourceNotFound      = errors.New("archived source workbook not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrInvalidWorkbook     = errors.New("file is not a readable workbook")
	ErrHeaderNotFound      = errors.New("no pricing header found")
	ErrNoPricingSheet      = errors.New("no sheet in the workbook has a pricing header")
	ErrValidationFailed    = errors.New("pricing validation failed")
	ErrValidationStale     = errors.New("validation report was produced by an older parser version")
	ErrInvalidOverrideKey  = errors.New("invalid price override key")
)

// HeaderNotFoundError is returned when no header row is located within the
// scan window of a sheet. It is fatal for the sheet but recoverable for the
// workbook: the next candidate sheet may still parse.
type HeaderNotFoundError struct {
	Sheet    string
	ScanRows int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q: no pricing header found in first %d rows", e.Sheet, e.ScanRows)
}

func (e *HeaderNotFoundError) Unwrap() error { return ErrHeaderNotFound }

// ValidationFailedError carries the full report of a rejected strict-mode parse.
type ValidationFailedError struct {
	Report *ValidationReport
}

func (e *ValidationFailedError) Error() string {
	if e.Report == nil || len(e.Report.Errors) == 0 {
		return ErrValidationFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Error(), strings.Join(e.Report.Errors, "; "))
}

func (e *ValidationFailedError) Unwrap() error { return ErrValidationFailed }
