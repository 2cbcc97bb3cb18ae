package pricingdoc

import (
	"context"
	"fmt"
	"strings"

	"ancpricing/internal/domain"
)

type currencyValidator struct{}

func (currencyValidator) RuleKey() string                     { return "currency.mixed" }
func (currencyValidator) RuleName() string                    { return "Currency: Single Currency" }
func (currencyValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleCurrency }
func (currencyValidator) Severity() domain.ValidationSeverity { return domain.ValidationSeverityWarning }

// Validate flags documents whose tables disagree on currency. No conversion
// is attempted.
func (currencyValidator) Validate(_ context.Context, in *Input) []ValidationResult {
	currencies := in.Document.Currencies()
	actual := strings.Join(currencies, ",")
	res := ValidationResult{
		Passed:        len(currencies) <= 1,
		FieldPath:     "currency",
		ExpectedValue: in.Document.Currency,
		ActualValue:   actual,
		Message:       "single currency",
	}
	if !res.Passed {
		res.Message = fmt.Sprintf("document mixes currencies %s; totals are not converted", actual)
	}
	return []ValidationResult{res}
}
