package domain

// FileType represents the workbook formats accepted for import.
type FileType string

const (
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLSM FileType = "xlsm"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"xlsx": FileTypeXLSX,
	"xlsm": FileTypeXLSM,
}

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FileTypeXLSM: "application/vnd.ms-excel.sheet.macroEnabled.12",
}

// ValidationStatus is the outcome of a validation pass.
type ValidationStatus string

const (
	ValidationPass ValidationStatus = "PASS"
	ValidationFail ValidationStatus = "FAIL"
)

// ValidationSeverity decides whether a failed check fails the report.
type ValidationSeverity string

const (
	ValidationSeverityError   ValidationSeverity = "error"
	ValidationSeverityWarning ValidationSeverity = "warning"
)

// ValidationRuleType groups built-in rules by what they check.
type ValidationRuleType string

const (
	ValidationRuleSumCheck  ValidationRuleType = "sum_check"
	ValidationRuleStructure ValidationRuleType = "structure"
	ValidationRuleCurrency  ValidationRuleType = "currency"
)

// ValidationMode controls how a FAIL report is surfaced.
type ValidationMode string

const (
	// ValidationModeAdvisory attaches a FAIL report without rejecting the parse.
	ValidationModeAdvisory ValidationMode = "advisory"
	// ValidationModeStrict rejects a parse whose report is FAIL.
	ValidationModeStrict ValidationMode = "strict"
)
