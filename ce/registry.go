/*
registry.go - Read-only requirement spec lookup

PURPOSE:
  Holds the full set of requirement descriptors the engine knows about.
  Built once at startup from explicit constructor arguments and never
  mutated afterwards, so lookups need no locking and two registries can
  coexist (production catalog vs. test fixtures).

HOW IT WORKS:
  1. The designations package declares one RequirementSpec per designation
  2. NewRegistry validates and indexes them at startup
  3. The calculator looks specs up by code; unknown codes mean
     "assignable but not tracked" and resolve to nothing

USAGE:
  reg, err := ce.NewRegistry(designations.Specs()...)
  spec, ok := reg.Lookup("CFP")

SEE ALSO:
  - requirement.go: The descriptor type
  - designations/catalog.go: The production catalog
  - factory/spec.go: Building descriptors from JSON
*/
package ce

import (
	"fmt"
	"sort"
)

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is an immutable index of requirement specs by designation code.
type Registry struct {
	byCode map[Designation]RequirementSpec
	order  []Designation
}

// NewRegistry validates and indexes the given specs. Duplicate codes and
// invalid descriptors are construction errors, not runtime surprises.
func NewRegistry(specs ...RequirementSpec) (*Registry, error) {
	r := &Registry{byCode: make(map[Designation]RequirementSpec, len(specs))}
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.byCode[spec.Code]; exists {
			return nil, fmt.Errorf("registry: %w: duplicate spec for %s", ErrInvalidInput, spec.Code)
		}
		r.byCode[spec.Code] = spec
		r.order = append(r.order, spec.Code)
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for startup paths where a bad catalog
// should stop the process.
func MustNewRegistry(specs ...RequirementSpec) *Registry {
	r, err := NewRegistry(specs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup finds a spec by code. The second return is false for codes the
// registry doesn't track.
func (r *Registry) Lookup(code Designation) (RequirementSpec, bool) {
	spec, ok := r.byCode[code]
	return spec, ok
}

// Specs returns all descriptors in registration order.
func (r *Registry) Specs() []RequirementSpec {
	out := make([]RequirementSpec, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.byCode[code])
	}
	return out
}

// Codes returns all tracked codes sorted alphabetically.
func (r *Registry) Codes() []Designation {
	out := make([]Designation, 0, len(r.byCode))
	for code := range r.byCode {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of tracked designations.
func (r *Registry) Len() int {
	return len(r.byCode)
}
