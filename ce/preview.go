/*
preview.go - Hypothetical-record evaluation

PURPOSE:
  Answers "if I complete this course, where does that leave me?" before
  the record exists. Professionals use this to decide whether a course is
  worth taking: does it close the ethics gap, does it finish the cycle.

KEY INSIGHT:
  A preview is just two aggregations over the same record set - one
  without the hypothetical record, one with it appended - against the
  same resolved period. Nothing is written; the store sees one read.

OUT-OF-PERIOD COURSES:
  If the course date falls outside the current reporting period, the
  "after" numbers equal the "before" numbers and CountsTowardPeriod is
  false. The course isn't wasted - it will count in whatever period
  contains its date - but it does nothing for the period on screen.

EXAMPLE:
  pv := &ce.Previewer{Calc: calc}
  res, err := pv.Preview(ctx, ce.PreviewInput{
      Assignment:   asn,
      Hypothetical: ce.Record{Title: "Ethics Update", Hours: ce.Hours(2), CompletedOn: date},
      Now:          today,
  })
  if res.NewlyComplete {
      // this one course finishes the cycle
  }

SEE ALSO:
  - calculator.go: The non-hypothetical evaluation path
  - aggregate.go: The computation run twice here
*/
package ce

import "context"

// =============================================================================
// PREVIEWER
// =============================================================================

// Previewer evaluates a designation with and without a hypothetical record.
type Previewer struct {
	Calc *Calculator
}

// PreviewInput carries the assignment under evaluation and the course
// being considered. The hypothetical record's ID and UserID are ignored;
// it is never persisted.
type PreviewInput struct {
	Assignment   DesignationAssignment
	Hypothetical Record
	Now          TimePoint
}

// PreviewResult holds before/after standings for one designation.
type PreviewResult struct {
	Before Progress
	After  Progress

	// CountsTowardPeriod is false when the course date falls outside the
	// resolved period, in which case After == Before.
	CountsTowardPeriod bool

	// NewlyComplete is set when the hypothetical record tips the overall
	// requirement from incomplete to complete.
	NewlyComplete bool

	// NewlyCompleteSubs names sub-requirements completed by the
	// hypothetical record.
	NewlyCompleteSubs []string
}

// Preview computes before/after progress for one assignment. Returns
// (nil, nil) under the same conditions Evaluate does: untracked code or
// unresolvable period. Hours must be positive.
func (p *Previewer) Preview(ctx context.Context, input PreviewInput) (*PreviewResult, error) {
	if !input.Hypothetical.Hours.IsPositive() {
		return nil, &ValidationError{Field: "hours", Message: "must be a positive number"}
	}

	spec, ok := p.Calc.Registry.Lookup(input.Assignment.Code)
	if !ok {
		return nil, nil
	}
	period, ok := spec.Rule.Resolve(input.Assignment, input.Now)
	if !ok {
		return nil, nil
	}

	records, err := p.Calc.Source.RecordsInRange(ctx, input.Assignment.UserID, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	before := Aggregate(spec, input.Assignment, period, records, input.Now)

	counts := period.Contains(input.Hypothetical.CompletedOn)
	after := before
	if counts {
		withCourse := make([]Record, 0, len(records)+1)
		withCourse = append(withCourse, records...)
		withCourse = append(withCourse, input.Hypothetical)
		after = Aggregate(spec, input.Assignment, period, withCourse, input.Now)
	}

	res := &PreviewResult{
		Before:             before,
		After:              after,
		CountsTowardPeriod: counts,
		NewlyComplete:      !before.Complete && after.Complete,
	}
	for i, sub := range after.Subs {
		if sub.Complete && !before.Subs[i].Complete {
			res.NewlyCompleteSubs = append(res.NewlyCompleteSubs, sub.Name)
		}
	}
	return res, nil
}
