package rules

import "fmt"

// Registry holds all registered rules in registration order
type Registry struct {
	rules    []Rule
	index    map[string]int
	disabled map[string]bool
}

// NewRegistry creates a new rule registry
func NewRegistry() *Registry {
	return &Registry{
		rules:    make([]Rule, 0),
		index:    make(map[string]int),
		disabled: make(map[string]bool),
	}
}

// Register adds rules to the registry in order. The batch is checked first:
// if any rule is unnamed or its name is already taken, by the registry or by
// an earlier rule in the same call, nothing is added. Nil rules are skipped.
func (r *Registry) Register(rules ...Rule) error {
	batch := make([]Rule, 0, len(rules))
	seen := make(map[string]bool, len(rules))
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		name := rule.Name()
		if name == "" {
			return fmt.Errorf("rule has no name")
		}
		if _, dup := r.index[name]; dup || seen[name] {
			return fmt.Errorf("rule %q is already registered", name)
		}
		seen[name] = true
		batch = append(batch, rule)
	}

	for _, rule := range batch {
		r.index[rule.Name()] = len(r.rules)
		r.rules = append(r.rules, rule)
	}
	return nil
}

// Rules returns the enabled rules, optionally filtering by AI requirement.
// If includeAI is false, rules with RequiresAI=true are excluded.
func (r *Registry) Rules(includeAI bool) []Rule {
	var result []Rule
	for _, rule := range r.rules {
		if r.disabled[rule.Name()] {
			continue
		}
		if rule.Config().RequiresAI && !includeAI {
			continue
		}
		result = append(result, rule)
	}
	return result
}

// All returns every registered rule, enabled or not.
func (r *Registry) All() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Get returns a rule by name
func (r *Registry) Get(name string) Rule {
	if i, ok := r.index[name]; ok {
		return r.rules[i]
	}
	return nil
}

// Disable turns a registered rule off.
func (r *Registry) Disable(name string) error {
	if _, ok := r.index[name]; !ok {
		return fmt.Errorf("unknown rule %q", name)
	}
	r.disabled[name] = true
	return nil
}

// Enable turns a registered rule back on.
func (r *Registry) Enable(name string) error {
	if _, ok := r.index[name]; !ok {
		return fmt.Errorf("unknown rule %q", name)
	}
	delete(r.disabled, name)
	return nil
}

// Enabled reports whether a registered rule will run.
func (r *Registry) Enabled(name string) bool {
	_, ok := r.index[name]
	return ok && !r.disabled[name]
}
