/*
Package ce provides the core continuing-education requirement engine.

PURPOSE:
  This package contains the types and algorithms for computing CE
  compliance: resolving a designation's reporting period from its anchor
  data, aggregating credit hours (with nested sub-category minimums)
  against a requirement descriptor, and orchestrating the per-designation
  calculators for a user.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 30 hours, $250)
  - Record: A completed CE activity (course, seminar, self-study)
  - User / DesignationAssignment: who holds which credential, with the
    anchor fields period resolution needs (birth month, state, grant date)
  - Typed IDs: UserID, RecordID, etc. prevent mixing identifiers

DESIGN PRINCIPLES:
  1. Explicit time: every computation takes "now" as a parameter; nothing
     below the entrypoints reads the wall clock
  2. Precision: decimal.Decimal for hour arithmetic, floats only at the
     presentation boundary
  3. Descriptors over branches: one aggregator consumes per-designation
     RequirementSpec data instead of one function per designation
  4. Nil means skip: a calculator that cannot produce a result (unknown
     code, missing anchor) returns nil, never an error

USAGE:
  reg := designations.NewRegistry()
  calc := &ce.Calculator{Source: store, Registry: reg}
  results, err := calc.EvaluateAll(ctx, user, assignments, ce.Today())

SEE ALSO:
  - period.go: reporting-period resolution per designation family
  - requirement.go: RequirementSpec descriptors and sub-requirements
  - aggregate.go: hour aggregation and Progress derivation
*/
package ce

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitHours   Unit = "hours"
	UnitDollars Unit = "dollars"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

// Hours is shorthand for the unit used by nearly every amount in this
// system.
func Hours(value float64) Amount {
	return NewAmount(value, UnitHours)
}

func (a Amount) Zero() Amount               { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount        { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount        { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Neg() Amount                { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool           { return a.Value.IsNegative() }
func (a Amount) IsZero() bool               { return a.Value.IsZero() }
func (a Amount) IsPositive() bool           { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool  { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool     { return a.Value.LessThan(b.Value) }
func (a Amount) GreaterThanOrEqual(b Amount) bool { return a.Value.GreaterThanOrEqual(b.Value) }
func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}
func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Float64 rounds to the nearest representable float for presentation.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

func (a Amount) String() string { return a.Value.String() + " " + string(a.Unit) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type RecordID string
type AssignmentID string
type FeedbackID string

// Designation is a credential code such as "CFP" or "CPA". Codes are
// case-sensitive and match the issuing body's capitalization ("ChFC").
type Designation string

// =============================================================================
// USER - Account holding designations and CE records
// =============================================================================

type User struct {
	ID           UserID
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool

	// NAPFA membership is orthogonal to designations: a member has a
	// join date and a parallel CE cycle of their own.
	NapfaMember   bool
	NapfaJoinDate *TimePoint

	ResetToken       string
	ResetTokenExpiry *time.Time

	CreatedAt time.Time
}

// =============================================================================
// DESIGNATION ASSIGNMENT - A credential held by a user
// =============================================================================

// DesignationAssignment links a user to a designation code together with
// the anchor data its period rule needs. At most one assignment per
// (user, code).
//
// Invariant: BirthMonth is set iff Code is CFP; State is set iff Code is
// CPA. CreatedAt doubles as the cycle anchor for anniversary-based codes.
type DesignationAssignment struct {
	ID         AssignmentID
	UserID     UserID
	Code       Designation
	BirthMonth int    // 1-12, CFP only; 0 = unset
	State      string // 2-letter code, CPA only
	CreatedAt  time.Time
}

// AnchorDate returns the date portion of CreatedAt, or fallback when the
// assignment has no timestamp.
func (a DesignationAssignment) AnchorDate(fallback TimePoint) TimePoint {
	if a.CreatedAt.IsZero() {
		return fallback
	}
	return DateOf(a.CreatedAt)
}

// =============================================================================
// RECORD - A completed CE activity
// =============================================================================

type Record struct {
	ID          RecordID
	UserID      UserID
	Title       string
	Provider    string
	Hours       Amount
	CompletedOn TimePoint
	Category    string
	Description string

	// NAPFA-specific flags. Designation calculators detect ethics by
	// substring match on Category/Title instead; these flags feed only
	// the NAPFA computation.
	NapfaApproved    bool
	EthicsCourse     bool
	NapfaSubjectArea string

	CreatedAt time.Time
}

// =============================================================================
// FEEDBACK - User-submitted product feedback
// =============================================================================

type Feedback struct {
	ID        FeedbackID
	Name      string
	Email     string
	Type      string
	Message   string
	UserID    UserID // empty when submitted anonymously
	Read      bool
	CreatedAt time.Time
}
