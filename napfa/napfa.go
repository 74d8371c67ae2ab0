/*
Package napfa implements the NAPFA membership CE requirement.

PURPOSE:
  NAPFA requirements run beside the designation engine rather than
  through it: they key off the user's membership flag and join date, not
  a designation assignment, and their thresholds depend on WHEN the
  member joined the current cycle rather than being fixed per code.

KEY DIFFERENCES FROM DESIGNATIONS:
  1. Cycle: fixed even/odd-anchored biennium starting on EVEN years
     (designations' even/odd rule starts on odd years)
  2. Tiering: total and approved-hour thresholds shrink for mid-cycle
     joiners, in four steps anchored to June 30 / Dec 31 boundaries
  3. Ethics: satisfied by the EXISTENCE of a flagged ethics course, not
     by summed hours
  4. Matching: uses the structured NapfaApproved/EthicsCourse record
     flags, never the free-text "ethics" substring

TIER SCHEDULE (join date vs. cycle [Y, Y+1]):
  on or before Jun 30, Y   -> 60 total / 30 approved
  on or before Dec 31, Y   -> 45 total / 30 approved
  on or before Jun 30, Y+1 -> 30 total / 30 approved
  later                    -> 15 total / 15 approved

SEE ALSO:
  - ce/aggregate.go: The designation-side computation this parallels
  - designations/catalog.go: The per-designation descriptors
*/
package napfa

import (
	"context"
	"time"

	"github.com/fairhaven/cetrack/ce"
)

// =============================================================================
// CYCLE AND TIERS
// =============================================================================

// CycleFor returns the 2-year NAPFA cycle containing now. Cycles start
// on even years: 2024 -> [2024, 2025], 2025 -> [2024, 2025].
func CycleFor(now ce.TimePoint) ce.Period {
	startYear := now.Year()
	if startYear%2 != 0 {
		startYear--
	}
	return ce.Period{
		Start: ce.StartOfYear(startYear),
		End:   ce.EndOfYear(startYear + 1),
	}
}

// Tier holds the requirement thresholds a join date earns.
type Tier struct {
	TotalRequired    ce.Amount
	ApprovedRequired ce.Amount
}

// TierFor picks the threshold tier for a join date within a cycle.
// Earlier joiners owe more; the schedule steps down at the cycle-start
// June 30 and Dec 31, then the cycle-end June 30.
func TierFor(joinDate ce.TimePoint, cycle ce.Period) Tier {
	startYear := cycle.Start.Year()
	endYear := cycle.End.Year()

	switch {
	case joinDate.BeforeOrEqual(ce.NewTimePoint(startYear, time.June, 30)):
		return Tier{TotalRequired: ce.Hours(60), ApprovedRequired: ce.Hours(30)}
	case joinDate.BeforeOrEqual(ce.NewTimePoint(startYear, time.December, 31)):
		return Tier{TotalRequired: ce.Hours(45), ApprovedRequired: ce.Hours(30)}
	case joinDate.BeforeOrEqual(ce.NewTimePoint(endYear, time.June, 30)):
		return Tier{TotalRequired: ce.Hours(30), ApprovedRequired: ce.Hours(30)}
	default:
		return Tier{TotalRequired: ce.Hours(15), ApprovedRequired: ce.Hours(15)}
	}
}

// =============================================================================
// RESULT
// =============================================================================

// Result is the NAPFA standing for one member and cycle. Like the
// designation Progress it is recomputed per request, never stored.
type Result struct {
	Cycle ce.Period

	TotalRequired  ce.Amount
	TotalEarned    ce.Amount
	TotalRemaining ce.Amount
	TotalPercent   float64

	// ApprovedEarned is the raw sum of NAPFA-approved hours - no display
	// cap on this one.
	ApprovedRequired  ce.Amount
	ApprovedEarned    ce.Amount
	ApprovedRemaining ce.Amount
	ApprovedPercent   float64

	// EthicsCompleted - at least one flagged ethics course exists in the
	// cycle. Hours are irrelevant here.
	EthicsCompleted bool

	Complete bool
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator evaluates NAPFA standing from the shared record source.
type Calculator struct {
	Source ce.RecordSource
}

// Evaluate returns the member's standing as of now, or (nil, nil) when
// the user isn't a member or has no join date - nothing to display.
func (c *Calculator) Evaluate(ctx context.Context, user ce.User, now ce.TimePoint) (*Result, error) {
	if !user.NapfaMember || user.NapfaJoinDate == nil {
		return nil, nil
	}

	cycle := CycleFor(now)
	tier := TierFor(*user.NapfaJoinDate, cycle)

	records, err := c.Source.RecordsInRange(ctx, user.ID, cycle.Start, cycle.End)
	if err != nil {
		return nil, err
	}

	total := ce.Hours(0)
	approved := ce.Hours(0)
	ethics := false
	for _, rec := range records {
		total = total.Add(rec.Hours)
		if rec.NapfaApproved {
			approved = approved.Add(rec.Hours)
		}
		if rec.EthicsCourse {
			ethics = true
		}
	}

	return &Result{
		Cycle:             cycle,
		TotalRequired:     tier.TotalRequired,
		TotalEarned:       total,
		TotalRemaining:    remaining(total, tier.TotalRequired),
		TotalPercent:      percent(total, tier.TotalRequired),
		ApprovedRequired:  tier.ApprovedRequired,
		ApprovedEarned:    approved,
		ApprovedRemaining: remaining(approved, tier.ApprovedRequired),
		ApprovedPercent:   percent(approved, tier.ApprovedRequired),
		EthicsCompleted:   ethics,
		Complete: total.GreaterThanOrEqual(tier.TotalRequired) &&
			approved.GreaterThanOrEqual(tier.ApprovedRequired) &&
			ethics,
	}, nil
}

func remaining(earned, required ce.Amount) ce.Amount {
	rem := required.Sub(earned)
	if rem.IsNegative() {
		return rem.Zero()
	}
	return rem
}

func percent(earned, required ce.Amount) float64 {
	if !required.IsPositive() {
		return 0
	}
	p := earned.Float64() / required.Float64() * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
