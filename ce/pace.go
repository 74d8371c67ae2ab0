package ce

// =============================================================================
// PACE - Is the professional on track for the period?
// =============================================================================

// Pace compares earned hours against a linear expectation for how far
// into the period we are. CE hours arrive in lumps, so this is guidance
// for reminder copy and dashboard nudges, not a compliance judgment.
type Pace struct {
	Period Period

	// Days elapsed including both endpoints, clamped to the period.
	ElapsedDays int
	TotalDays   int

	// ElapsedFraction is ElapsedDays/TotalDays in [0, 1].
	ElapsedFraction float64

	// ExpectedHours is the linear prorate of the total requirement.
	ExpectedHours Amount
	EarnedHours   Amount

	// OnTrack is earned >= expected.
	OnTrack bool
}

// PaceOf derives pace from an already-computed Progress. Pure; now may
// fall outside the period and is clamped to it.
func PaceOf(prog Progress, now TimePoint) Pace {
	totalDays := DaysBetween(prog.Period.Start, prog.Period.End) + 1
	if totalDays < 1 {
		totalDays = 1
	}

	elapsed := DaysBetween(prog.Period.Start, now) + 1
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > totalDays {
		elapsed = totalDays
	}

	fraction := float64(elapsed) / float64(totalDays)
	expected := NewAmount(prog.TotalRequired.Float64()*fraction, prog.TotalRequired.Unit)

	return Pace{
		Period:          prog.Period,
		ElapsedDays:     elapsed,
		TotalDays:       totalDays,
		ElapsedFraction: fraction,
		ExpectedHours:   expected,
		EarnedHours:     prog.TotalEarned,
		OnTrack:         prog.TotalEarned.GreaterThanOrEqual(expected),
	}
}
