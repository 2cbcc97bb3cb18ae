package validator

import (
	"context"
	"log"

	"ancpricing/internal/domain"
	"ancpricing/internal/money"
	"ancpricing/internal/pricing"
	"ancpricing/internal/validator/pricingdoc"
)

// Engine runs every registered rule against a parsed document and assembles
// an exhaustive report.
type Engine struct {
	registry  *Registry
	precision int32
}

// NewEngine creates a validation engine. precision is the display precision
// that sets the comparison epsilon.
func NewEngine(registry *Registry, precision int32) *Engine {
	if precision < 0 {
		precision = money.DefaultPrecision
	}
	return &Engine{registry: registry, precision: precision}
}

// Validate cross-checks doc against the totals its sheet recorded. All rules
// run; failures accumulate. The document-level total check runs only when the
// parse found a displayed document total.
func (e *Engine) Validate(ctx context.Context, doc *domain.PricingDocument) *domain.ValidationReport {
	in := &pricingdoc.Input{Document: doc, Precision: e.precision, DisplayedTotal: doc.DisplayedTotal}

	report := &domain.ValidationReport{
		Status:        domain.ValidationPass,
		Errors:        []string{},
		ParserVersion: pricing.ParserVersion,
	}
	for _, v := range e.registry.All() {
		for _, r := range v.Validate(ctx, in) {
			report.Checks = append(report.Checks, domain.CheckResult{
				RuleKey:       v.RuleKey(),
				Severity:      v.Severity(),
				Passed:        r.Passed,
				FieldPath:     r.FieldPath,
				ExpectedValue: r.ExpectedValue,
				ActualValue:   r.ActualValue,
				Message:       r.Message,
			})
			if r.Passed {
				continue
			}
			if v.Severity() == domain.ValidationSeverityError {
				report.Errors = append(report.Errors, r.Message)
			} else {
				report.Warnings = append(report.Warnings, r.Message)
			}
		}
	}
	if len(report.Errors) > 0 {
		report.Status = domain.ValidationFail
	}

	log.Printf("validator.Engine: sheet %q validated: status=%s, errors=%d, warnings=%d, checks=%d",
		doc.SourceSheet, report.Status, len(report.Errors), len(report.Warnings), len(report.Checks))
	return report
}

// Check validates doc and, in strict mode, returns a *domain.ValidationFailedError
// carrying the report when it failed. The report is always returned.
func (e *Engine) Check(ctx context.Context, doc *domain.PricingDocument, mode domain.ValidationMode) (*domain.ValidationReport, error) {
	report := e.Validate(ctx, doc)
	if mode == domain.ValidationModeStrict && !report.Passed() {
		return report, &domain.ValidationFailedError{Report: report}
	}
	return report, nil
}
