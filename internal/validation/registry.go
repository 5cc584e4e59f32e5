package validation

// Registry keys for the built-in rules
const (
	RuleName     = "name"
	RuleQuery    = "query"
	RuleCurrency = "currency"
)

// Registry resolves rules by key. It is built once at startup and read-only afterwards.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry creates a registry holding the given rules
func NewRegistry(rules map[string]Rule) *Registry {
	r := &Registry{rules: make(map[string]Rule, len(rules))}
	for key, rule := range rules {
		r.rules[key] = rule
	}
	return r
}

// DefaultRegistry wires the name, query and currency rules to a shared validator
func DefaultRegistry() *Registry {
	v := GetValidator()
	return NewRegistry(map[string]Rule{
		RuleName:     NewNameRule(v),
		RuleQuery:    NewQueryRule(v),
		RuleCurrency: NewCurrencyRule(v),
	})
}

// Get returns the rule registered under key
func (r *Registry) Get(key string) (Rule, bool) {
	rule, ok := r.rules[key]
	return rule, ok
}
