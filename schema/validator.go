package schema

import (
	"fmt"
	"regexp"
	"sync"
)

// Validator checks a candidate field value. Implementations are registered
// by name and resolved at write time, keeping schemas free of executable
// payloads so they can cross process boundaries.
type Validator interface {
	Validate(value any) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(value any) error

// Validate implements Validator.
func (f ValidatorFunc) Validate(value any) error { return f(value) }

// ValidatorRegistry maps validator names to implementations.
type ValidatorRegistry struct {
	mu         sync.RWMutex
	validators map[string]Validator
}

// NewValidatorRegistry creates an empty registry.
func NewValidatorRegistry() *ValidatorRegistry {
	return &ValidatorRegistry{validators: make(map[string]Validator)}
}

// Register adds or replaces a named validator.
func (r *ValidatorRegistry) Register(name string, v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = v
}

// RegisterPattern registers a regular-expression validator for string
// values under the given name.
func (r *ValidatorRegistry) RegisterPattern(name string, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern for validator %q: %w", name, err)
	}
	r.Register(name, ValidatorFunc(func(value any) error {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("validator %q: expected string, got %T", name, value)
		}
		if !re.MatchString(s) {
			return fmt.Errorf("validator %q: value does not match pattern", name)
		}
		return nil
	}))
	return nil
}

// Lookup returns the named validator, or nil if none is registered.
func (r *ValidatorRegistry) Lookup(name string) Validator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.validators[name]
}

// ValidateField runs the field's named pattern validator against a value,
// if one is registered. Fields without a pattern always pass.
func (r *ValidatorRegistry) ValidateField(f *FieldSchema, value any) error {
	if f.Pattern == "" {
		return nil
	}
	v := r.Lookup(f.Pattern)
	if v == nil {
		return fmt.Errorf("no validator registered under %q for field %q", f.Pattern, f.Name)
	}
	return v.Validate(value)
}
