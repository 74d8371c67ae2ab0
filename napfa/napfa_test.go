package napfa_test

import (
	"context"
	"testing"
	"time"

	"github.com/fairhaven/cetrack/ce"
	"github.com/fairhaven/cetrack/napfa"
	"github.com/fairhaven/cetrack/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) ce.TimePoint {
	return ce.NewTimePoint(year, month, day)
}

func member(joined ce.TimePoint) ce.User {
	return ce.User{
		ID:            "user-1",
		Username:      "pat",
		NapfaMember:   true,
		NapfaJoinDate: &joined,
	}
}

func seed(t *testing.T, st *memory.Store, title string, hours float64, on ce.TimePoint, approved, ethics bool) {
	t.Helper()
	rec := ce.Record{
		UserID:        "user-1",
		Title:         title,
		Hours:         ce.Hours(hours),
		CompletedOn:   on,
		NapfaApproved: approved,
		EthicsCourse:  ethics,
	}
	if err := st.CreateRecord(context.Background(), &rec); err != nil {
		t.Fatalf("seed record %q: %v", title, err)
	}
}

func hoursEqual(a ce.Amount, want float64) bool {
	return a.Value.Equal(ce.Hours(want).Value)
}

// =============================================================================
// CYCLES
// =============================================================================

func TestCycleFor_StartsOnEvenYears(t *testing.T) {
	// GIVEN: instants in an even and an odd year
	// WHEN: resolving the cycle
	// THEN: both land in the biennium starting on the even year

	cycle := napfa.CycleFor(date(2024, time.March, 1))
	if !cycle.Start.Equal(date(2024, time.January, 1)) || !cycle.End.Equal(date(2025, time.December, 31)) {
		t.Errorf("expected [2024-01-01, 2025-12-31], got %s", cycle)
	}

	cycle = napfa.CycleFor(date(2025, time.November, 20))
	if !cycle.Start.Equal(date(2024, time.January, 1)) || !cycle.End.Equal(date(2025, time.December, 31)) {
		t.Errorf("expected odd year to fold into [2024-01-01, 2025-12-31], got %s", cycle)
	}
}

// =============================================================================
// TIER SCHEDULE
// =============================================================================

func TestTierFor_FourSteps(t *testing.T) {
	cycle := napfa.CycleFor(date(2024, time.June, 1))

	cases := []struct {
		name         string
		join         ce.TimePoint
		total        float64
		approved     float64
	}{
		{"joined before cycle-start June 30", date(2024, time.April, 1), 60, 30},
		{"exactly on June 30 boundary", date(2024, time.June, 30), 60, 30},
		{"second half of cycle start year", date(2024, time.July, 1), 45, 30},
		{"first half of cycle end year", date(2025, time.March, 15), 30, 30},
		{"late joiner", date(2025, time.July, 2), 15, 15},
		{"joined years before the cycle", date(2019, time.January, 1), 60, 30},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tier := napfa.TierFor(tc.join, cycle)
			if !hoursEqual(tier.TotalRequired, tc.total) || !hoursEqual(tier.ApprovedRequired, tc.approved) {
				t.Errorf("expected %v/%v, got %v/%v",
					tc.total, tc.approved, tier.TotalRequired, tier.ApprovedRequired)
			}
		})
	}
}

// =============================================================================
// EVALUATION
// =============================================================================

func TestEvaluate_NonMemberYieldsNothing(t *testing.T) {
	// GIVEN: a non-member, and a member without a join date
	// WHEN: evaluating
	// THEN: nil result, nil error in both cases

	ctx := context.Background()
	calc := &napfa.Calculator{Source: memory.New()}

	res, err := calc.Evaluate(ctx, ce.User{ID: "user-1"}, date(2024, time.June, 1))
	if err != nil || res != nil {
		t.Errorf("expected nothing for a non-member, got %+v, %v", res, err)
	}

	res, err = calc.Evaluate(ctx, ce.User{ID: "user-1", NapfaMember: true}, date(2024, time.June, 1))
	if err != nil || res != nil {
		t.Errorf("expected nothing without a join date, got %+v, %v", res, err)
	}
}

func TestEvaluate_EarlyJoinerFullTier(t *testing.T) {
	// GIVEN: a member who joined 2024-04-01 (60/30 tier) with mixed records
	// WHEN: evaluating inside the 2024-2025 cycle
	// THEN: approved hours sum separately and ethics needs a flagged course

	ctx := context.Background()
	st := memory.New()
	calc := &napfa.Calculator{Source: st}

	seed(t, st, "Planning Conference", 20, date(2024, time.May, 1), true, false)
	seed(t, st, "Self Study", 10, date(2024, time.August, 1), false, false)

	res, err := calc.Evaluate(ctx, member(date(2024, time.April, 1)), date(2024, time.October, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil {
		t.Fatal("expected a result for a member")
	}

	if !hoursEqual(res.TotalRequired, 60) || !hoursEqual(res.ApprovedRequired, 30) {
		t.Errorf("expected 60/30 tier, got %v/%v", res.TotalRequired, res.ApprovedRequired)
	}
	if !hoursEqual(res.TotalEarned, 30) {
		t.Errorf("expected 30 total hours, got %v", res.TotalEarned)
	}
	if !hoursEqual(res.ApprovedEarned, 20) {
		t.Errorf("expected 20 approved hours, got %v", res.ApprovedEarned)
	}
	if res.EthicsCompleted {
		t.Error("expected ethics outstanding without a flagged course")
	}
	if res.Complete {
		t.Error("expected incomplete standing")
	}
}

func TestEvaluate_EthicsIsExistenceNotHours(t *testing.T) {
	// GIVEN: a single 0.5-hour flagged ethics course
	// WHEN: evaluating
	// THEN: the ethics box ticks - hours don't matter for this check

	ctx := context.Background()
	st := memory.New()
	calc := &napfa.Calculator{Source: st}

	seed(t, st, "Ethics Briefing", 0.5, date(2024, time.March, 1), false, true)

	res, err := calc.Evaluate(ctx, member(date(2024, time.January, 15)), date(2024, time.June, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.EthicsCompleted {
		t.Error("expected a flagged ethics course to complete the ethics check")
	}
}

func TestEvaluate_LateJoinerCompletesSmallTier(t *testing.T) {
	// GIVEN: a late joiner (15/15 tier) with 16 approved hours and ethics
	// WHEN: evaluating
	// THEN: complete, with percentages clamped at 100

	ctx := context.Background()
	st := memory.New()
	calc := &napfa.Calculator{Source: st}

	seed(t, st, "Approved Intensive", 16, date(2025, time.September, 1), true, false)
	seed(t, st, "Ethics Hour", 1, date(2025, time.October, 1), true, true)

	res, err := calc.Evaluate(ctx, member(date(2025, time.August, 1)), date(2025, time.November, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !hoursEqual(res.TotalRequired, 15) || !hoursEqual(res.ApprovedRequired, 15) {
		t.Errorf("expected 15/15 tier, got %v/%v", res.TotalRequired, res.ApprovedRequired)
	}
	if res.TotalPercent != 100 || res.ApprovedPercent != 100 {
		t.Errorf("expected clamped 100%%, got %v/%v", res.TotalPercent, res.ApprovedPercent)
	}
	if !res.Complete {
		t.Error("expected complete standing")
	}
}

func TestEvaluate_RecordsOutsideCycleIgnored(t *testing.T) {
	// GIVEN: records before the cycle start
	// WHEN: evaluating in the 2024-2025 cycle
	// THEN: the prior-cycle hours don't count

	ctx := context.Background()
	st := memory.New()
	calc := &napfa.Calculator{Source: st}

	seed(t, st, "Old Cycle Course", 40, date(2023, time.December, 31), true, true)
	seed(t, st, "Current Course", 5, date(2024, time.February, 1), false, false)

	res, err := calc.Evaluate(ctx, member(date(2022, time.January, 1)), date(2024, time.June, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hoursEqual(res.TotalEarned, 5) {
		t.Errorf("expected only in-cycle hours, got %v", res.TotalEarned)
	}
	if res.EthicsCompleted {
		t.Error("expected prior-cycle ethics course not to count")
	}
}
