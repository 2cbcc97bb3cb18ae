package validator

import "ancpricing/internal/validator/pricingdoc"

// Registry maps rule keys to Validator implementations and remembers the
// order they were registered in, which is the order they report in.
type Registry struct {
	validators map[string]Validator
	order      []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[string]Validator)}
}

// DefaultRegistry returns a registry holding every built-in pricing rule.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, v := range pricingdoc.AllBuiltinValidators() {
		r.Register(v)
	}
	return r
}

// Register adds a validator to the registry. Registering a key again
// replaces the validator but keeps its position.
func (r *Registry) Register(v Validator) {
	if _, ok := r.validators[v.RuleKey()]; !ok {
		r.order = append(r.order, v.RuleKey())
	}
	r.validators[v.RuleKey()] = v
}

// Get returns the validator for a given rule key, or nil if not found.
func (r *Registry) Get(key string) Validator {
	return r.validators[key]
}

// All returns all registered validators in registration order.
func (r *Registry) All() []Validator {
	out := make([]Validator, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.validators[key])
	}
	return out
}
