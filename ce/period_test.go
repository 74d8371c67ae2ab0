package ce_test

import (
	"testing"
	"time"

	"github.com/fairhaven/cetrack/ce"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) ce.TimePoint {
	return ce.NewTimePoint(year, month, day)
}

func assignment(code ce.Designation) ce.DesignationAssignment {
	return ce.DesignationAssignment{ID: "asn-1", UserID: "user-1", Code: code}
}

func resolveOK(t *testing.T, rule ce.PeriodRule, asn ce.DesignationAssignment, now ce.TimePoint) ce.Period {
	t.Helper()
	period, ok := rule.Resolve(asn, now)
	if !ok {
		t.Fatalf("expected period to resolve for %s at %s", asn.Code, now)
	}
	return period
}

func wantPeriod(t *testing.T, got ce.Period, start, end ce.TimePoint) {
	t.Helper()
	if !got.Start.Equal(start) || !got.End.Equal(end) {
		t.Errorf("expected period [%s, %s], got %s", start, end, got)
	}
}

// =============================================================================
// CALENDAR YEAR
// =============================================================================

func TestCalendarYearPeriod_SpansCurrentYear(t *testing.T) {
	// GIVEN: a calendar-year designation (CPA-style)
	// WHEN: resolving mid-year
	// THEN: the period is Jan 1 - Dec 31 of the current year

	rule := ce.PeriodRule{Kind: ce.PeriodCalendarYear}
	period := resolveOK(t, rule, assignment("CPA"), date(2025, time.June, 15))
	wantPeriod(t, period, date(2025, time.January, 1), date(2025, time.December, 31))
}

// =============================================================================
// BIRTH MONTH (CFP)
// =============================================================================

func TestBirthMonthPeriod_BeforeBirthMonth(t *testing.T) {
	// GIVEN: birth month June
	// WHEN: resolving on 2025-05-01, before the birth month
	// THEN: the window opened two years back on June 1

	asn := assignment("CFP")
	asn.BirthMonth = 6
	rule := ce.PeriodRule{Kind: ce.PeriodBirthMonth}

	period := resolveOK(t, rule, asn, date(2025, time.May, 1))
	wantPeriod(t, period, date(2023, time.June, 1), date(2025, time.May, 31))
}

func TestBirthMonthPeriod_FlipsAtBirthMonth(t *testing.T) {
	// GIVEN: birth month June
	// WHEN: resolving on 2025-07-01, past the birth month
	// THEN: the window opened last year, no gap against the prior window

	asn := assignment("CFP")
	asn.BirthMonth = 6
	rule := ce.PeriodRule{Kind: ce.PeriodBirthMonth}

	period := resolveOK(t, rule, asn, date(2025, time.July, 1))
	wantPeriod(t, period, date(2024, time.June, 1), date(2026, time.May, 31))
}

func TestBirthMonthPeriod_NoGapAcrossBoundary(t *testing.T) {
	// GIVEN: birth month June and the two instants either side of June 1
	// WHEN: resolving both
	// THEN: the earlier window ends the day before the later one starts

	asn := assignment("CFP")
	asn.BirthMonth = 6
	rule := ce.PeriodRule{Kind: ce.PeriodBirthMonth}

	before := resolveOK(t, rule, asn, date(2025, time.May, 31))
	after := resolveOK(t, rule, asn, date(2025, time.June, 1))

	if !before.End.AddDays(1).Equal(after.Start) {
		t.Errorf("expected contiguous windows, got %s then %s", before, after)
	}
}

func TestBirthMonthPeriod_MissingBirthMonth(t *testing.T) {
	// GIVEN: a CFP assignment without a birth month
	// WHEN: resolving
	// THEN: no period - callers skip the designation

	rule := ce.PeriodRule{Kind: ce.PeriodBirthMonth}
	if _, ok := rule.Resolve(assignment("CFP"), date(2025, time.May, 1)); ok {
		t.Error("expected no period without a birth month")
	}

	asn := assignment("CFP")
	asn.BirthMonth = 13
	if _, ok := rule.Resolve(asn, date(2025, time.May, 1)); ok {
		t.Error("expected no period for an out-of-range birth month")
	}
}

// =============================================================================
// TRIENNIAL (EA)
// =============================================================================

func TestTriennialPeriod_FloorsToMultipleOfThree(t *testing.T) {
	// GIVEN: the EA 3-year enrollment cycle
	// WHEN: resolving in different years
	// THEN: the cycle start year is the year floored to a multiple of 3

	rule := ce.PeriodRule{Kind: ce.PeriodTriennial}
	asn := assignment("EA")

	period := resolveOK(t, rule, asn, date(2025, time.February, 1))
	wantPeriod(t, period, date(2025, time.January, 1), date(2027, time.December, 31))

	period = resolveOK(t, rule, asn, date(2024, time.November, 30))
	wantPeriod(t, period, date(2022, time.January, 1), date(2024, time.December, 31))
}

// =============================================================================
// EVEN/ODD BIENNIAL (CLU, CIMA, ...)
// =============================================================================

func TestEvenOddPeriod_StartsOnOddYears(t *testing.T) {
	// GIVEN: an even/odd biennial designation
	// WHEN: resolving in an odd and then an even year
	// THEN: both land in the cycle starting on the odd year

	rule := ce.PeriodRule{Kind: ce.PeriodEvenOdd}
	asn := assignment("CLU")

	period := resolveOK(t, rule, asn, date(2025, time.March, 1))
	wantPeriod(t, period, date(2025, time.January, 1), date(2026, time.December, 31))

	period = resolveOK(t, rule, asn, date(2024, time.March, 1))
	wantPeriod(t, period, date(2023, time.January, 1), date(2024, time.December, 31))
}

// =============================================================================
// ANNIVERSARY (CEP, ECA)
// =============================================================================

func TestAnniversaryPeriod_SecondCycleClampedToNow(t *testing.T) {
	// GIVEN: a designation granted 2023-03-10
	// WHEN: resolving on 2025-06-01 (2.23 mean years elapsed)
	// THEN: period index 1 starts 2025-03-10; the theoretical 2027-03-09
	//       end is still in the future, so it clamps to now

	asn := assignment("CEP")
	asn.CreatedAt = time.Date(2023, time.March, 10, 14, 30, 0, 0, time.UTC)
	rule := ce.PeriodRule{Kind: ce.PeriodAnniversary}

	period := resolveOK(t, rule, asn, date(2025, time.June, 1))
	wantPeriod(t, period, date(2025, time.March, 10), date(2025, time.June, 1))
}

func TestAnniversaryPeriod_FirstCycle(t *testing.T) {
	// GIVEN: a designation granted 2024-08-01
	// WHEN: resolving less than two mean years later
	// THEN: the first period runs from the anchor, clamped to now

	asn := assignment("ECA")
	asn.CreatedAt = time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)
	rule := ce.PeriodRule{Kind: ce.PeriodAnniversary}

	period := resolveOK(t, rule, asn, date(2025, time.February, 1))
	wantPeriod(t, period, date(2024, time.August, 1), date(2025, time.February, 1))
}

func TestAnniversaryPeriod_MissingAnchorFallsBackToNow(t *testing.T) {
	// GIVEN: an assignment with no creation timestamp
	// WHEN: resolving
	// THEN: the anchor defaults to now and the period opens today

	asn := assignment("CEP") // zero CreatedAt
	rule := ce.PeriodRule{Kind: ce.PeriodAnniversary}

	now := date(2025, time.June, 1)
	period := resolveOK(t, rule, asn, now)
	if !period.Start.Equal(now) || !period.End.Equal(now) {
		t.Errorf("expected single-day period at %s, got %s", now, period)
	}
}

// =============================================================================
// RESOLVER DISPATCH
// =============================================================================

func TestResolve_UnknownKind(t *testing.T) {
	rule := ce.PeriodRule{Kind: "quarterly"}
	if _, ok := rule.Resolve(assignment("CFP"), date(2025, time.May, 1)); ok {
		t.Error("expected unknown period kind to resolve to nothing")
	}
}

func TestYearlyWindow_MatchesCalendarYear(t *testing.T) {
	w := ce.YearlyWindow(date(2025, time.September, 9))
	wantPeriod(t, w, date(2025, time.January, 1), date(2025, time.December, 31))
}
