/*
aggregate.go - Progress calculation over a resolved period

PURPOSE:
  Computes designation progress from CE records within a period. This is
  the central calculation that answers "where does this professional
  stand?" for one designation.

KEY INSIGHT:
  Progress is computed for a PERIOD, not at a point in time. The period
  comes from the designation's period rule; every record inside it counts
  toward the total, and sub-requirements select subsets of the same pool.

DOUBLE COUNTING:
  A 2-hour ethics course counts toward BOTH the 2h ethics minimum and the
  30h total. Sub-requirements are minimums within the pool, not carve-outs.

DISPLAY CAP:
  Sub-requirements flagged CapEarned report earned as min(earned, required)
  while remaining, percentage, and completeness stay on the raw sum. The
  capped figure feeds progress bars that should never overflow.

PERCENTAGES:
  percentage = clamp(earned / required * 100, 0, 100). A zero requirement
  yields 0, never a division error. Completeness ignores percentages and
  compares raw amounts directly.

EXAMPLE:
  CFP (30h total, 2h ethics), period contains 28h general + 4h ethics:

    TotalEarned = 32, TotalRemaining = 0, TotalPercent = 100
    ethics: Earned = 2 (capped), Remaining = 0, Percent = 100
    Complete = true

SEE ALSO:
  - requirement.go: The descriptors this consumes
  - calculator.go: Resolves periods and loads records, then calls Aggregate
*/
package ce

// =============================================================================
// PROGRESS - One designation's standing for one period
// =============================================================================

// Progress is the computed standing for one designation assignment. It is
// recomputed on every request and never persisted; snapshots copy the
// numbers out when a durable capture is wanted.
type Progress struct {
	Designation Designation
	State       string // CPA licensing state, empty otherwise
	Period      Period

	TotalRequired  Amount
	TotalEarned    Amount
	TotalRemaining Amount
	TotalPercent   float64

	Subs []SubProgress

	// CEP/ECA display metadata, nil for everyone else.
	AdminFee        *Amount
	VolunteerWaiver *Amount

	Complete bool
}

// SubProgress is one nested minimum's standing.
type SubProgress struct {
	Name     string
	Kind     SubKind
	Required Amount

	// Earned is capped at Required when the descriptor says so;
	// Remaining, Percent, and Complete always use the raw sum.
	Earned    Amount
	Remaining Amount
	Percent   float64
	Complete  bool

	// Window is the nested sub-period for yearly minimums, nil for
	// record-matching kinds.
	Window *Period
}

// =============================================================================
// AGGREGATION - Records in, Progress out
// =============================================================================

// Aggregate computes Progress for one designation from the records inside
// its period. Pure: no I/O, no clock reads. Callers must pass only
// records with period.Start <= CompletedOn <= period.End; now anchors the
// nested window of yearly-minimum sub-requirements.
func Aggregate(spec RequirementSpec, asn DesignationAssignment, period Period, records []Record, now TimePoint) Progress {
	total := Hours(0)
	for _, rec := range records {
		total = total.Add(rec.Hours)
	}

	prog := Progress{
		Designation:     spec.Code,
		State:           asn.State,
		Period:          period,
		TotalRequired:   spec.TotalRequired,
		TotalEarned:     total,
		TotalRemaining:  remainingOf(total, spec.TotalRequired),
		TotalPercent:    percentOf(total, spec.TotalRequired),
		AdminFee:        spec.AdminFee,
		VolunteerWaiver: spec.VolunteerWaiver,
	}

	complete := total.GreaterThanOrEqual(spec.TotalRequired)

	for _, sub := range spec.Subs {
		sp := aggregateSub(sub, records, now)
		complete = complete && sp.Complete
		prog.Subs = append(prog.Subs, sp)
	}

	prog.Complete = complete
	return prog
}

func aggregateSub(sub SubRequirementSpec, records []Record, now TimePoint) SubProgress {
	raw := Hours(0)
	var window *Period

	if sub.Kind == SubYearlyMinimum {
		w := YearlyWindow(now)
		window = &w
		for _, rec := range records {
			if w.Contains(rec.CompletedOn) {
				raw = raw.Add(rec.Hours)
			}
		}
	} else {
		for _, rec := range records {
			if sub.Matches(rec) {
				raw = raw.Add(rec.Hours)
			}
		}
	}

	earned := raw
	if sub.CapEarned {
		earned = raw.Min(sub.Required)
	}

	return SubProgress{
		Name:      sub.Name,
		Kind:      sub.Kind,
		Required:  sub.Required,
		Earned:    earned,
		Remaining: remainingOf(raw, sub.Required),
		Percent:   percentOf(raw, sub.Required),
		Complete:  raw.GreaterThanOrEqual(sub.Required),
		Window:    window,
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func remainingOf(earned, required Amount) Amount {
	rem := required.Sub(earned)
	if rem.IsNegative() {
		return rem.Zero()
	}
	return rem
}

func percentOf(earned, required Amount) float64 {
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
