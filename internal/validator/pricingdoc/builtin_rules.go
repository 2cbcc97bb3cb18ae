package pricingdoc

import (
	"context"

	"ancpricing/internal/domain"
)

// BuiltinValidator wraps a validator function and its metadata for the registry.
type BuiltinValidator struct {
	key      string
	name     string
	ruleType domain.ValidationRuleType
	sev      domain.ValidationSeverity
	fn       func(context.Context, *Input) []ValidationResult
}

func (b *BuiltinValidator) Validate(ctx context.Context, in *Input) []ValidationResult {
	return b.fn(ctx, in)
}
func (b *BuiltinValidator) RuleKey() string                     { return b.key }
func (b *BuiltinValidator) RuleName() string                    { return b.name }
func (b *BuiltinValidator) RuleType() domain.ValidationRuleType { return b.ruleType }
func (b *BuiltinValidator) Severity() domain.ValidationSeverity { return b.sev }

type rule interface {
	Validate(context.Context, *Input) []ValidationResult
	RuleKey() string
	RuleName() string
	RuleType() domain.ValidationRuleType
	Severity() domain.ValidationSeverity
}

func wrap(v rule) *BuiltinValidator {
	return &BuiltinValidator{
		key: v.RuleKey(), name: v.RuleName(),
		ruleType: v.RuleType(), sev: v.Severity(),
		fn: v.Validate,
	}
}

// AllBuiltinValidators returns every built-in rule in reporting order.
func AllBuiltinValidators() []*BuiltinValidator {
	structVals := StructureValidators()
	mathVals := MathValidators()
	all := make([]*BuiltinValidator, 0, len(structVals)+len(mathVals)+1)

	// Emptiness first so an empty sheet reads as such at the top of the report.
	for _, v := range structVals {
		all = append(all, wrap(v))
	}
	for _, v := range mathVals {
		all = append(all, wrap(v))
	}
	all = append(all, wrap(currencyValidator{}))
	return all
}
