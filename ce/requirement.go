package ce

import (
	"fmt"
	"strings"
)

// =============================================================================
// REQUIREMENT SPEC - Data-driven designation descriptor
// =============================================================================

// RequirementSpec describes one designation's CE requirement: the period
// rule its cycle renews on, the total hour threshold, and any nested
// sub-category minimums. One generic aggregator consumes these
// descriptors; there is no per-designation code path.
type RequirementSpec struct {
	Code        Designation
	Name        string // issuing body's long name, for display
	Description string // requirement summary shown as a tooltip

	Rule          PeriodRule
	TotalRequired Amount
	Subs          []SubRequirementSpec

	// CEP/ECA carry a flat administrative fee that 15 volunteer hours
	// waive. Display metadata only - never part of completeness.
	AdminFee        *Amount
	VolunteerWaiver *Amount
}

// Validate reports whether the descriptor is internally usable. The
// factory calls this before a spec reaches the registry.
func (s RequirementSpec) Validate() error {
	if s.Code == "" {
		return fmt.Errorf("requirement spec: %w: empty designation code", ErrInvalidInput)
	}
	switch s.Rule.Kind {
	case PeriodCalendarYear, PeriodBirthMonth, PeriodTriennial, PeriodEvenOdd, PeriodAnniversary:
	default:
		return fmt.Errorf("requirement spec %s: %w: unknown period kind %q", s.Code, ErrInvalidInput, s.Rule.Kind)
	}
	if s.TotalRequired.IsNegative() {
		return fmt.Errorf("requirement spec %s: %w: negative total requirement", s.Code, ErrInvalidInput)
	}
	for _, sub := range s.Subs {
		switch sub.Kind {
		case SubEthicsText, SubNapfaApproved, SubYearlyMinimum:
		default:
			return fmt.Errorf("requirement spec %s: %w: unknown sub-requirement kind %q", s.Code, ErrInvalidInput, sub.Kind)
		}
		if sub.Name == "" {
			return fmt.Errorf("requirement spec %s: %w: unnamed sub-requirement", s.Code, ErrInvalidInput)
		}
	}
	return nil
}

// =============================================================================
// SUB-REQUIREMENTS - Nested minimums inside the total
// =============================================================================

// SubKind selects how a sub-requirement picks its records.
type SubKind string

const (
	// Hours from records whose category or title contains the
	// case-insensitive substring "ethics". A free-text match - not the
	// structured EthicsCourse flag, which belongs to NAPFA.
	SubEthicsText SubKind = "ethics_text"

	// Hours from records flagged NapfaApproved.
	SubNapfaApproved SubKind = "napfa_approved"

	// Hours within the nested calendar-year window of a multi-year
	// cycle (the EA 16h/year floor).
	SubYearlyMinimum SubKind = "yearly_minimum"
)

// SubRequirementSpec is one nested minimum. Matching hours count toward
// BOTH the sub-requirement and the total - the professional bodies define
// these as minimums within the pool, not carve-outs.
type SubRequirementSpec struct {
	Name     string
	Kind     SubKind
	Required Amount

	// CapEarned reports earned hours as min(earned, required) while
	// leaving remaining/percentage/completeness on the raw sum. The
	// ethics panels display this way; flag and window subs show raw.
	CapEarned bool
}

// Matches reports whether a record counts toward this sub-requirement.
// Yearly-minimum subs select by window, not per record; they always
// return false here and are summed separately by the aggregator.
func (s SubRequirementSpec) Matches(rec Record) bool {
	switch s.Kind {
	case SubEthicsText:
		return mentionsEthics(rec)
	case SubNapfaApproved:
		return rec.NapfaApproved
	default:
		return false
	}
}

func mentionsEthics(rec Record) bool {
	return strings.Contains(strings.ToLower(rec.Category), "ethics") ||
		strings.Contains(strings.ToLower(rec.Title), "ethics")
}
