package validator

import (
	"context"

	"ancpricing/internal/domain"
	"ancpricing/internal/validator/pricingdoc"
)

// Validator is the interface for a single built-in validation rule.
type Validator interface {
	Validate(ctx context.Context, in *pricingdoc.Input) []pricingdoc.ValidationResult
	RuleKey() string
	RuleName() string
	RuleType() domain.ValidationRuleType
	Severity() domain.ValidationSeverity
}
