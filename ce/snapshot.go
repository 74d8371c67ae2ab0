package ce

import (
	"context"
	"time"
)

// =============================================================================
// COMPLIANCE SNAPSHOT - Frozen progress at a point in time
// =============================================================================

// ComplianceSnapshot captures one designation's headline numbers on a
// given day. Used for:
//   - Admin compliance overview without recomputing every user
//   - Trend display ("you were at 40% in March")
//   - An audit trail of what the tracker reported and when
//
// The ID is deterministic over (user, designation, day), so capturing
// the same designation twice on one day overwrites the earlier capture
// instead of stacking duplicates.
type ComplianceSnapshot struct {
	ID          string
	UserID      UserID
	Designation Designation

	// The reporting period the numbers describe
	Period Period

	// The day the capture ran
	TakenOn TimePoint

	Reason SnapshotReason

	TotalRequired Amount
	TotalEarned   Amount
	TotalPercent  float64
	Complete      bool

	CreatedAt time.Time
}

type SnapshotReason string

const (
	SnapshotScheduled SnapshotReason = "scheduled" // background scheduler
	SnapshotManual    SnapshotReason = "manual"    // admin triggered
	SnapshotImport    SnapshotReason = "import"    // taken after a bulk import
)

// SnapshotOf flattens a Progress into a durable capture.
func SnapshotOf(userID UserID, prog Progress, takenOn TimePoint, reason SnapshotReason) ComplianceSnapshot {
	return ComplianceSnapshot{
		ID:            string(userID) + "-" + string(prog.Designation) + "-" + takenOn.String(),
		UserID:        userID,
		Designation:   prog.Designation,
		Period:        prog.Period,
		TakenOn:       takenOn,
		Reason:        reason,
		TotalRequired: prog.TotalRequired,
		TotalEarned:   prog.TotalEarned,
		TotalPercent:  prog.TotalPercent,
		Complete:      prog.Complete,
	}
}

// =============================================================================
// SNAPSHOTTER - Evaluates and persists captures
// =============================================================================

// Snapshotter runs the calculator and writes the results down. Users is
// only needed for CaptureAll.
type Snapshotter struct {
	Calc  *Calculator
	Users UserStore
	Store SnapshotStore
}

// CaptureUser evaluates every tracked designation the user holds and
// persists one snapshot per result. Returns what it wrote.
func (s *Snapshotter) CaptureUser(ctx context.Context, userID UserID, now TimePoint, reason SnapshotReason) ([]ComplianceSnapshot, error) {
	progs, err := s.Calc.EvaluateUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	snaps := make([]ComplianceSnapshot, 0, len(progs))
	for _, prog := range progs {
		snap := SnapshotOf(userID, prog, now, reason)
		if err := s.Store.SaveSnapshot(ctx, snap); err != nil {
			return snaps, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// CaptureAll captures every user. Returns the total snapshot count; a
// failing user aborts the sweep so the scheduler can retry it whole.
func (s *Snapshotter) CaptureAll(ctx context.Context, now TimePoint, reason SnapshotReason) (int, error) {
	users, err := s.Users.ListUsers(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, u := range users {
		snaps, err := s.CaptureUser(ctx, u.ID, now, reason)
		total += len(snaps)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
