package ce

import "time"

// =============================================================================
// PERIOD - The reporting window requirements are evaluated against
// =============================================================================

// Period is an inclusive [Start, End] date window. Hours are ALWAYS
// aggregated over a period, never at a point in time.
//
// Examples:
//   - CPA calendar year 2025: Jan 1 - Dec 31
//   - CFP birth-month window: Jun 1 2023 - May 31 2025
//   - EA triennial cycle: Jan 1 2024 - Dec 31 2026
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the date is within the period [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodKind selects the date algorithm a designation family renews on.
type PeriodKind string

const (
	// Jan 1 - Dec 31 of the current year (CPA, CFA, CDFA, AIF, IAR).
	PeriodCalendarYear PeriodKind = "calendar_year"

	// Two-year window anchored to the holder's birth month (CFP). Flips
	// the day the birth month arrives, with no gap or overlap.
	PeriodBirthMonth PeriodKind = "birth_month"

	// Three-year cycle aligned to calendar years divisible by 3 (EA).
	// Carries a nested calendar-year sub-window for the yearly minimum.
	PeriodTriennial PeriodKind = "triennial"

	// Two calendar years starting on odd years (CLU, ChFC, CIMA, CIMC,
	// CPWA, CRPS, RICP).
	PeriodEvenOdd PeriodKind = "even_odd"

	// Two-year window anchored to the grant date of the designation
	// (CEP, ECA). The open period's end is reported as "now".
	PeriodAnniversary PeriodKind = "anniversary"
)

// PeriodRule is the tagged period-rule variant carried by a
// RequirementSpec. The anchor values themselves (birth month, grant
// date) live on the DesignationAssignment, not here.
type PeriodRule struct {
	Kind PeriodKind
}

// =============================================================================
// PERIOD RESOLUTION - Which window is active right now
// =============================================================================

// Resolve computes the active reporting window for an assignment at the
// given date. ok is false when the rule needs anchor data the assignment
// doesn't carry (a CFP assignment without a birth month); callers treat
// that as "no result", not an error.
//
// Windows are computed fresh on every call - there is no persisted
// "current period" state anywhere.
func (r PeriodRule) Resolve(asn DesignationAssignment, now TimePoint) (Period, bool) {
	switch r.Kind {
	case PeriodCalendarYear:
		return calendarYearPeriod(now), true

	case PeriodBirthMonth:
		if asn.BirthMonth < 1 || asn.BirthMonth > 12 {
			return Period{}, false
		}
		return birthMonthPeriod(asn.BirthMonth, now), true

	case PeriodTriennial:
		return triennialPeriod(now), true

	case PeriodEvenOdd:
		return evenOddPeriod(now), true

	case PeriodAnniversary:
		return anniversaryPeriod(asn.AnchorDate(now), now), true

	default:
		return Period{}, false
	}
}

func calendarYearPeriod(now TimePoint) Period {
	return Period{Start: StartOfYear(now.Year()), End: EndOfYear(now.Year())}
}

// birthMonthPeriod returns the 2-year window anchored to the 1st of the
// birth month. Before the birth month the window opened two years back;
// from the birth month on it opened last year. Exactly one window is
// active at any instant.
func birthMonthPeriod(birthMonth int, now TimePoint) Period {
	bm := time.Month(birthMonth)
	year := now.Year()
	if now.Month() < bm {
		return Period{
			Start: NewTimePoint(year-2, bm, 1),
			End:   NewTimePoint(year, bm, 1).AddDays(-1),
		}
	}
	return Period{
		Start: NewTimePoint(year-1, bm, 1),
		End:   NewTimePoint(year+1, bm, 1).AddDays(-1),
	}
}

// triennialPeriod returns the 3-year cycle whose start year is the
// current year floored to a multiple of 3.
func triennialPeriod(now TimePoint) Period {
	cycleStart := (now.Year() / 3) * 3
	return Period{
		Start: StartOfYear(cycleStart),
		End:   EndOfYear(cycleStart + 2),
	}
}

// evenOddPeriod returns the 2-year cycle that starts on odd years.
func evenOddPeriod(now TimePoint) Period {
	cycleStart := now.Year()
	if cycleStart%2 == 0 {
		cycleStart--
	}
	return Period{
		Start: StartOfYear(cycleStart),
		End:   EndOfYear(cycleStart + 1),
	}
}

// anniversaryPeriod returns the biennial window containing "now",
// counted from the anchor date. The period index is derived from mean
// elapsed years (365.25-day years) so a grant late in February doesn't
// drift across leap cycles; the window bounds themselves are real
// calendar dates. An end date still in the future is clamped to now -
// the open period is reported to date, not to its theoretical close.
func anniversaryPeriod(anchor, now TimePoint) Period {
	yearsSince := float64(DaysBetween(anchor, now)) / 365.25
	n := int(yearsSince / 2)
	if n < 0 {
		n = 0
	}

	start := NewTimePoint(anchor.Year()+2*n, anchor.Month(), anchor.Day())
	end := NewTimePoint(anchor.Year()+2*(n+1), anchor.Month(), anchor.Day()).AddDays(-1)
	if end.After(now) {
		end = now
	}
	return Period{Start: start, End: end}
}

// YearlyWindow returns the nested calendar-year sub-window used by
// yearly-minimum sub-requirements inside multi-year cycles.
func YearlyWindow(now TimePoint) Period {
	return calendarYearPeriod(now)
}
