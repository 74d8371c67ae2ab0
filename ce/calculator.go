/*
calculator.go - Requirement evaluation orchestrator

PURPOSE:
  Ties the engine together: resolve the period for a designation
  assignment, load the records inside it, aggregate progress. One
  storage round-trip per designation.

NULL RESULTS:
  Evaluate returns (nil, nil) - no progress, no error - when there is
  nothing to compute:
    - the code isn't in the registry (CLE is assignable but untracked)
    - the period rule can't resolve (CFP without a birth month)
  Callers render "nothing to display", not a failure. Storage errors are
  real errors and propagate unchanged.

DETERMINISM:
  now is an explicit parameter everywhere. Evaluating the same records
  at the same instant always yields identical results, which is what
  makes snapshots and previews trustworthy.

SEE ALSO:
  - aggregate.go: The pure computation
  - preview.go: Hypothetical-record evaluation on top of Evaluate
  - snapshot.go: Durable captures of these results
*/
package ce

import "context"

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator evaluates designation progress. Source and Registry are
// required; Assignments is optional and only needed for EvaluateUser.
type Calculator struct {
	Source      RecordSource
	Registry    *Registry
	Assignments AssignmentStore
}

// Evaluate computes progress for one designation assignment as of now.
// Returns (nil, nil) when the designation has no tracked requirement or
// its period cannot be resolved.
func (c *Calculator) Evaluate(ctx context.Context, asn DesignationAssignment, now TimePoint) (*Progress, error) {
	spec, ok := c.Registry.Lookup(asn.Code)
	if !ok {
		return nil, nil
	}

	period, ok := spec.Rule.Resolve(asn, now)
	if !ok {
		return nil, nil
	}

	records, err := c.Source.RecordsInRange(ctx, asn.UserID, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	prog := Aggregate(spec, asn, period, records, now)
	return &prog, nil
}

// EvaluateAll computes progress for each assignment, preserving input
// order and dropping the ones that evaluate to nothing. The first
// storage error aborts the whole pass.
func (c *Calculator) EvaluateAll(ctx context.Context, asns []DesignationAssignment, now TimePoint) ([]Progress, error) {
	var out []Progress
	for _, asn := range asns {
		prog, err := c.Evaluate(ctx, asn, now)
		if err != nil {
			return nil, err
		}
		if prog != nil {
			out = append(out, *prog)
		}
	}
	return out, nil
}

// EvaluateUser loads the user's assignments and evaluates them all.
// Requires Assignments to be set.
func (c *Calculator) EvaluateUser(ctx context.Context, userID UserID, now TimePoint) ([]Progress, error) {
	asns, err := c.Assignments.AssignmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.EvaluateAll(ctx, asns, now)
}
