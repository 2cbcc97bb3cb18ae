package pricingdoc

import (
	"context"
	"fmt"

	"ancpricing/internal/domain"
	"ancpricing/internal/money"
)

// structureValidator checks the shape of the segmented document.
type structureValidator struct {
	ruleKey  string
	ruleName string
	severity domain.ValidationSeverity
	validate func(*Input) []ValidationResult
}

func (v *structureValidator) RuleKey() string                     { return v.ruleKey }
func (v *structureValidator) RuleName() string                    { return v.ruleName }
func (v *structureValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleStructure }
func (v *structureValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *structureValidator) Validate(_ context.Context, in *Input) []ValidationResult {
	return v.validate(in)
}

func structureResult(passed bool, fieldPath, expected, actual, failMsg string) ValidationResult {
	msg := fmt.Sprintf("%s: ok", fieldPath)
	if !passed {
		msg = failMsg
	}
	return ValidationResult{
		Passed: passed, FieldPath: fieldPath,
		ExpectedValue: expected, ActualValue: actual, Message: msg,
	}
}

// StructureValidators returns the structural checks.
func StructureValidators() []*structureValidator {
	return []*structureValidator{
		{
			ruleKey: "structure.document.empty", ruleName: "Structure: Document Has Tables",
			severity: domain.ValidationSeverityError,
			validate: func(in *Input) []ValidationResult {
				n := len(in.Document.Tables)
				return []ValidationResult{structureResult(
					n > 0, "tables", "at least 1 table", fmt.Sprintf("%d", n),
					fmt.Sprintf("sheet %q has a pricing header but no pricing tables", in.Document.SourceSheet),
				)}
			},
		},
		{
			ruleKey: "structure.document.baseline", ruleName: "Structure: Document Total Baseline",
			severity: domain.ValidationSeverityError,
			validate: func(in *Input) []ValidationResult {
				expected := grandTotalSum(in.Document)
				actual := money.Dec(in.Document.DocumentTotal)
				return []ValidationResult{structureResult(
					in.approxEqual(expected, actual), "documentTotal", in.fmtd(expected), in.fmtd(actual),
					fmt.Sprintf("document total %s does not equal the sum of table grand totals %s", in.fmtd(actual), in.fmtd(expected)),
				)}
			},
		},
		{
			ruleKey: "structure.table.items", ruleName: "Structure: Table Has Items",
			severity: domain.ValidationSeverityError,
			validate: func(in *Input) []ValidationResult {
				results := make([]ValidationResult, 0, len(in.Document.Tables))
				for i := range in.Document.Tables {
					t := &in.Document.Tables[i]
					passed := len(t.Items) > 0 || money.Dec(t.GrandTotal).IsZero()
					results = append(results, structureResult(
						passed, fmt.Sprintf("tables[%d].items", i),
						"line items for a non-zero grand total", fmt.Sprintf("%d", len(t.Items)),
						fmt.Sprintf("%s: no line items but grand total is %s", tableLabel(t), in.fmtd(money.Dec(t.GrandTotal))),
					))
				}
				return results
			},
		},
		{
			ruleKey: "structure.table.grand_total_row", ruleName: "Structure: Table Closed By Grand Total",
			severity: domain.ValidationSeverityError,
			validate: func(in *Input) []ValidationResult {
				results := make([]ValidationResult, 0, len(in.Document.Tables))
				for i := range in.Document.Tables {
					t := &in.Document.Tables[i]
					actual := "present"
					if !hasGrandTotalRow(t) {
						actual = "missing"
					}
					results = append(results, structureResult(
						hasGrandTotalRow(t), fmt.Sprintf("tables[%d].grandTotal", i), "present", actual,
						fmt.Sprintf("%s: no grand total row found", tableLabel(t)),
					))
				}
				return results
			},
		},
		{
			ruleKey: "structure.table.unique_id", ruleName: "Structure: Unique Table IDs",
			severity: domain.ValidationSeverityError,
			validate: func(in *Input) []ValidationResult {
				seen := make(map[string]int, len(in.Document.Tables))
				var results []ValidationResult
				for i := range in.Document.Tables {
					id := in.Document.Tables[i].ID
					fp := fmt.Sprintf("tables[%d].id", i)
					if id == "" {
						results = append(results, structureResult(false, fp, "non-empty id", "", fmt.Sprintf("table %d has no id", i)))
						continue
					}
					if prev, dup := seen[id]; dup {
						results = append(results, structureResult(false, fp, "unique id", id,
							fmt.Sprintf("table id %q is used by tables[%d] and tables[%d]", id, prev, i)))
						continue
					}
					seen[id] = i
					results = append(results, structureResult(true, fp, "unique id", id, ""))
				}
				return results
			},
		},
		{
			ruleKey: "structure.table.included_nonzero", ruleName: "Structure: Included Items Are Unpriced",
			severity: domain.ValidationSeverityWarning,
			validate: func(in *Input) []ValidationResult {
				var results []ValidationResult
				for i := range in.Document.Tables {
					t := &in.Document.Tables[i]
					for j := range t.Items {
						item := &t.Items[j]
						if !item.IsIncluded {
							continue
						}
						price := money.Dec(item.SellingPrice)
						results = append(results, structureResult(
							price.IsZero(), fmt.Sprintf("tables[%d].items[%d].sellingPrice", i, j), in.fmtd(money.Dec(0)), in.fmtd(price),
							fmt.Sprintf("%s: included item %q carries price %s", tableLabel(t), item.Description, in.fmtd(price)),
						))
					}
				}
				return results
			},
		},
	}
}
