package pricingdoc

import (
	"context"
	"fmt"

	"ancpricing/internal/domain"
	"ancpricing/internal/money"
)

// mathValidator checks arithmetic relationships between recorded values.
type mathValidator struct {
	ruleKey  string
	ruleName string
	severity domain.ValidationSeverity
	validate func(*Input) []ValidationResult
}

func (v *mathValidator) RuleKey() string                     { return v.ruleKey }
func (v *mathValidator) RuleName() string                    { return v.ruleName }
func (v *mathValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleSumCheck }
func (v *mathValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *mathValidator) Validate(_ context.Context, in *Input) []ValidationResult {
	return v.validate(in)
}

func mathResult(passed bool, fieldPath, subject, expected, actual string) ValidationResult {
	msg := fmt.Sprintf("%s matches (%s)", subject, actual)
	if !passed {
		msg = fmt.Sprintf("%s mismatch: expected %s, sheet shows %s", subject, expected, actual)
	}
	return ValidationResult{
		Passed: passed, FieldPath: fieldPath,
		ExpectedValue: expected, ActualValue: actual, Message: msg,
	}
}

// MathValidators returns the sum checks.
func MathValidators() []*mathValidator {
	return []*mathValidator{
		{
			ruleKey: "math.table.subtotal", ruleName: "Math: Table Subtotal",
			severity: domain.ValidationSeverityError,
			validate: func(in *Input) []ValidationResult {
				results := make([]ValidationResult, 0, len(in.Document.Tables))
				for i := range in.Document.Tables {
					t := &in.Document.Tables[i]
					if !hasSubtotalRow(t) {
						continue
					}
					expected := itemSum(t)
					actual := money.Dec(t.Subtotal)
					results = append(results, mathResult(
						in.approxEqual(expected, actual),
						fmt.Sprintf("tables[%d].subtotal", i),
						tableLabel(t)+": subtotal",
						in.fmtd(expected), in.fmtd(actual),
					))
				}
				return results
			},
		},
		{
			ruleKey: "math.table.grand_total", ruleName: "Math: Table Grand Total",
			severity: domain.ValidationSeverityError,
			validate: func(in *Input) []ValidationResult {
				results := make([]ValidationResult, 0, len(in.Document.Tables))
				for i := range in.Document.Tables {
					t := &in.Document.Tables[i]
					if !hasGrandTotalRow(t) {
						continue
					}
					subtotal := money.Dec(t.Subtotal)
					if !hasSubtotalRow(t) {
						subtotal = itemSum(t)
					}
					expected := subtotal.Add(money.Dec(t.TaxAmount())).Add(money.Dec(t.Bond))
					actual := money.Dec(t.GrandTotal)
					results = append(results, mathResult(
						in.approxEqual(expected, actual),
						fmt.Sprintf("tables[%d].grandTotal", i),
						tableLabel(t)+": grand total (subtotal + tax + bond)",
						in.fmtd(expected), in.fmtd(actual),
					))
				}
				return results
			},
		},
		{
			ruleKey: "math.document.total", ruleName: "Math: Document Total",
			severity: domain.ValidationSeverityError,
			validate: func(in *Input) []ValidationResult {
				if in.DisplayedTotal == nil {
					return nil
				}
				expected := grandTotalSum(in.Document)
				actual := money.Dec(*in.DisplayedTotal)
				return []ValidationResult{mathResult(
					in.approxEqual(expected, actual),
					"documentTotal",
					"document total (sum of table grand totals)",
					in.fmtd(expected), in.fmtd(actual),
				)}
			},
		},
	}
}
