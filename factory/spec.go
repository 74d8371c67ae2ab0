/*
Package factory provides JSON to Go requirement-spec conversion.

PURPOSE:
  Converts JSON requirement definitions into ce.RequirementSpec values.
  This enables catalog changes without code changes - an issuing body
  bumps its hour threshold, and the deployment overrides one descriptor
  in a JSON file instead of waiting for a release.

JSON SCHEMA:
  {
    "code": "CFP",
    "name": "Certified Financial Planner",
    "description": "CFP professionals must complete ...",
    "period": {"kind": "birth_month"},
    "total_hours": 30,
    "subs": [
      {"name": "ethics", "kind": "ethics_text", "hours": 2, "cap_earned": true}
    ],
    "admin_fee": 250,
    "volunteer_waiver_hours": 15
  }

STRICTNESS:
  Unknown period or sub-requirement kinds are hard errors, not defaults.
  A misspelled "callendar_year" must fail at startup, never silently
  track the wrong window for a year.

USAGE:
  f := factory.NewSpecFactory()

  // One descriptor from JSON
  spec, err := f.ParseSpec(jsonString)

  // A catalog file overlaying the built-ins
  specs, err := factory.ParseCatalog(fileBytes)
  reg, err := ce.NewRegistry(factory.Overlay(designations.Specs(), specs)...)

SEE ALSO:
  - ce/requirement.go: RequirementSpec type definition
  - designations/catalog.go: Go-based descriptor configurations
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/fairhaven/cetrack/ce"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SpecJSON is the JSON representation of a requirement spec.
type SpecJSON struct {
	Code        string     `json:"code"`
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Period      PeriodJSON `json:"period"`
	TotalHours  float64    `json:"total_hours"`
	Subs        []SubJSON  `json:"subs,omitempty"`

	AdminFee             *float64 `json:"admin_fee,omitempty"`
	VolunteerWaiverHours *float64 `json:"volunteer_waiver_hours,omitempty"`
}

// PeriodJSON selects the period rule.
type PeriodJSON struct {
	Kind string `json:"kind"` // calendar_year, birth_month, triennial, even_odd, anniversary
}

// SubJSON represents one nested minimum.
type SubJSON struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind"` // ethics_text, napfa_approved, yearly_minimum
	Hours     float64 `json:"hours"`
	CapEarned bool    `json:"cap_earned,omitempty"`
}

// =============================================================================
// SPEC FACTORY
// =============================================================================

// SpecFactory converts JSON requirement definitions to Go structs.
type SpecFactory struct{}

// NewSpecFactory creates a new spec factory.
func NewSpecFactory() *SpecFactory {
	return &SpecFactory{}
}

// ParseSpec parses a JSON string into a RequirementSpec.
func (f *SpecFactory) ParseSpec(jsonStr string) (ce.RequirementSpec, error) {
	var sj SpecJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return ce.RequirementSpec{}, fmt.Errorf("failed to parse spec JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// FromJSON converts SpecJSON to a validated ce.RequirementSpec.
func (f *SpecFactory) FromJSON(sj SpecJSON) (ce.RequirementSpec, error) {
	kind, err := parsePeriodKind(sj.Period.Kind)
	if err != nil {
		return ce.RequirementSpec{}, fmt.Errorf("spec %s: %w", sj.Code, err)
	}

	spec := ce.RequirementSpec{
		Code:          ce.Designation(sj.Code),
		Name:          sj.Name,
		Description:   sj.Description,
		Rule:          ce.PeriodRule{Kind: kind},
		TotalRequired: ce.Hours(sj.TotalHours),
	}

	for _, sub := range sj.Subs {
		subKind, err := parseSubKind(sub.Kind)
		if err != nil {
			return ce.RequirementSpec{}, fmt.Errorf("spec %s: %w", sj.Code, err)
		}
		spec.Subs = append(spec.Subs, ce.SubRequirementSpec{
			Name:      sub.Name,
			Kind:      subKind,
			Required:  ce.Hours(sub.Hours),
			CapEarned: sub.CapEarned,
		})
	}

	if sj.AdminFee != nil {
		fee := ce.NewAmount(*sj.AdminFee, ce.UnitDollars)
		spec.AdminFee = &fee
	}
	if sj.VolunteerWaiverHours != nil {
		waiver := ce.Hours(*sj.VolunteerWaiverHours)
		spec.VolunteerWaiver = &waiver
	}

	if err := spec.Validate(); err != nil {
		return ce.RequirementSpec{}, err
	}
	return spec, nil
}

// ToJSON converts a RequirementSpec to its JSON representation.
func (f *SpecFactory) ToJSON(spec ce.RequirementSpec) SpecJSON {
	sj := SpecJSON{
		Code:        string(spec.Code),
		Name:        spec.Name,
		Description: spec.Description,
		Period:      PeriodJSON{Kind: string(spec.Rule.Kind)},
		TotalHours:  spec.TotalRequired.Float64(),
	}

	for _, sub := range spec.Subs {
		sj.Subs = append(sj.Subs, SubJSON{
			Name:      sub.Name,
			Kind:      string(sub.Kind),
			Hours:     sub.Required.Float64(),
			CapEarned: sub.CapEarned,
		})
	}

	if spec.AdminFee != nil {
		v := spec.AdminFee.Float64()
		sj.AdminFee = &v
	}
	if spec.VolunteerWaiver != nil {
		v := spec.VolunteerWaiver.Float64()
		sj.VolunteerWaiverHours = &v
	}
	return sj
}

// =============================================================================
// CATALOG FILES
// =============================================================================

// ParseCatalog parses a JSON array of specs, typically a deployment's
// override file.
func ParseCatalog(data []byte) ([]ce.RequirementSpec, error) {
	var sjs []SpecJSON
	if err := json.Unmarshal(data, &sjs); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	f := NewSpecFactory()
	specs := make([]ce.RequirementSpec, 0, len(sjs))
	for _, sj := range sjs {
		spec, err := f.FromJSON(sj)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Overlay merges override specs onto a base catalog. An override with a
// code already in the base replaces it; new codes append in file order.
func Overlay(base, overrides []ce.RequirementSpec) []ce.RequirementSpec {
	out := make([]ce.RequirementSpec, len(base))
	copy(out, base)

	for _, override := range overrides {
		replaced := false
		for i := range out {
			if out[i].Code == override.Code {
				out[i] = override
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, override)
		}
	}
	return out
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parsePeriodKind(s string) (ce.PeriodKind, error) {
	switch s {
	case "calendar_year":
		return ce.PeriodCalendarYear, nil
	case "birth_month":
		return ce.PeriodBirthMonth, nil
	case "triennial":
		return ce.PeriodTriennial, nil
	case "even_odd":
		return ce.PeriodEvenOdd, nil
	case "anniversary":
		return ce.PeriodAnniversary, nil
	default:
		return "", fmt.Errorf("%w: unknown period kind %q", ce.ErrInvalidInput, s)
	}
}

func parseSubKind(s string) (ce.SubKind, error) {
	switch s {
	case "ethics_text":
		return ce.SubEthicsText, nil
	case "napfa_approved":
		return ce.SubNapfaApproved, nil
	case "yearly_minimum":
		return ce.SubYearlyMinimum, nil
	default:
		return "", fmt.Errorf("%w: unknown sub-requirement kind %q", ce.ErrInvalidInput, s)
	}
}
