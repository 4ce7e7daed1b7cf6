package api

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

type compiledRule struct {
	source  string
	program *exprvm.Program
}

// SchemaRegistry holds named record schemas. A schema is a list of boolean
// expr rules evaluated against each record's decoded JSON fields, e.g.
// `id > 0` or `total_budget >= 0`.
type SchemaRegistry struct {
	mu      sync.RWMutex
	schemas map[string][]compiledRule
}

// NewSchemaRegistry returns an empty registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{schemas: make(map[string][]compiledRule)}
}

// SchemaName is the schema an endpoint's records are validated against:
// the endpoint without its trailing slash.
func SchemaName(endpoint string) string {
	return strings.Trim(endpoint, "/")
}

// DefaultSchemas are registered by NewDefaultSchemaRegistry.
var DefaultSchemas = map[string][]string{
	"programs":          {"id > 0", "name != nil", "total_budget == nil || total_budget >= 0"},
	"partners":          {"id > 0", "name != nil"},
	"sectors":           {"id > 0", "name != nil"},
	"sub-sectors":       {"id > 0", "sector_id != nil"},
	"markers":           {"id > 0"},
	"sub-markers":       {"id > 0", "marker_id != nil"},
	"region-indicators": {"code != nil", "value != nil"},
}

// NewDefaultSchemaRegistry returns a registry with DefaultSchemas plus extra,
// whose rules replace the defaults of the same name.
func NewDefaultSchemaRegistry(extra map[string][]string) (*SchemaRegistry, error) {
	r := NewSchemaRegistry()
	for name, rules := range DefaultSchemas {
		if _, override := extra[name]; override {
			continue
		}
		if err := r.Register(name, rules...); err != nil {
			return nil, err
		}
	}
	for name, rules := range extra {
		if err := r.Register(name, rules...); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register compiles rules under name, replacing any earlier schema.
func (r *SchemaRegistry) Register(name string, rules ...string) error {
	compiled := make([]compiledRule, 0, len(rules))
	for _, src := range rules {
		if src == "" {
			return fmt.Errorf("schema %q: empty rule", name)
		}
		prog, err := exprlang.Compile(src,
			exprlang.Env(map[string]any{}),
			exprlang.AllowUndefinedVariables(),
			exprlang.AsBool(),
		)
		if err != nil {
			return fmt.Errorf("schema %q: compiling %q: %w", name, src, err)
		}
		compiled = append(compiled, compiledRule{source: src, program: prog})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[name] = compiled
	return nil
}

// Names returns the registered schema names, sorted.
func (r *SchemaRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks records against the named schema. Unknown schemas and a nil
// registry accept everything. The error, when not nil, is a *SchemaError.
func (r *SchemaRegistry) Validate(name string, records []map[string]any) error {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	rules := r.schemas[name]
	r.mu.RUnlock()
	if len(rules) == 0 {
		return nil
	}

	var violations []Violation
	for i, rec := range records {
		env := make(map[string]any, len(rec))
		for k, v := range rec {
			env[k] = v
		}
		for _, rule := range rules {
			out, err := exprlang.Run(rule.program, env)
			if err != nil {
				violations = append(violations, Violation{Index: i, Rule: rule.source, Err: err})
				continue
			}
			if ok, _ := out.(bool); !ok {
				violations = append(violations, Violation{Index: i, Rule: rule.source})
			}
		}
	}
	if len(violations) > 0 {
		return &SchemaError{Schema: name, Violations: violations}
	}
	return nil
}
