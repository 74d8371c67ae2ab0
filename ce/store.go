/*
store.go - Persistence interfaces for users, records, and compliance data

PURPOSE:
  Defines the interface between the domain logic and the database.
  The calculator depends only on RecordSource; the API layer consumes
  the composite Store. Different implementations can use SQLite or
  in-memory storage.

KEY INTERFACES:
  RecordSource:    Read-only record window queries (calculator dependency)
  RecordStore:     CE record CRUD plus duplicate detection
  UserStore:       Accounts, credentials, reset tokens
  AssignmentStore: Designation-to-user mapping
  FeedbackStore:   User-submitted feedback for admins
  SnapshotStore:   Point-in-time compliance captures
  Store:           Composite of all of the above

DUPLICATE CONTRACT:
  CreateRecord refuses a record matching an existing one on user, title,
  completion date, and hours (ErrDuplicateRecord). Imports rely on this
  plus RecordExists to skip rows instead of double-counting them.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - store/memory/memory.go: In-memory for tests and demos

SEE ALSO:
  - calculator.go: Consumes RecordSource
  - api/server.go: Consumes Store
*/
package ce

import "context"

// =============================================================================
// RECORD SOURCE - The calculator's only persistence dependency
// =============================================================================

// RecordSource loads a user's CE records inside a date window. This is
// the single query the requirement calculator needs; everything else it
// derives in memory.
type RecordSource interface {
	// RecordsInRange returns records with from <= CompletedOn <= to,
	// ordered by completion date ascending.
	RecordsInRange(ctx context.Context, userID UserID, from, to TimePoint) ([]Record, error)
}

// =============================================================================
// RECORD STORE - Full CE record persistence
// =============================================================================

// RecordStore extends RecordSource with the mutations the product needs.
type RecordStore interface {
	RecordSource

	// CreateRecord persists a record and assigns its ID.
	// Returns *DuplicateRecordError if an identical record exists.
	CreateRecord(ctx context.Context, rec *Record) error

	// RecordByID returns one record or ErrRecordNotFound.
	RecordByID(ctx context.Context, id RecordID) (Record, error)

	// UpdateRecord overwrites an existing record's mutable fields.
	UpdateRecord(ctx context.Context, rec Record) error

	// DeleteRecord removes a record permanently.
	DeleteRecord(ctx context.Context, id RecordID) error

	// RecordsByUser returns all of a user's records, newest first.
	RecordsByUser(ctx context.Context, userID UserID) ([]Record, error)

	// RecordExists reports whether a record with the same user, title,
	// completion date, and hours already exists.
	RecordExists(ctx context.Context, userID UserID, title string, completedOn TimePoint, hours Amount) (bool, error)
}

// =============================================================================
// USER STORE - Accounts and credentials
// =============================================================================

type UserStore interface {
	// CreateUser persists a user and assigns its ID. Returns
	// ErrDuplicateUsername or ErrDuplicateEmail on collisions.
	CreateUser(ctx context.Context, u *User) error

	// UserByID returns one user or ErrUserNotFound.
	UserByID(ctx context.Context, id UserID) (User, error)

	// UserByUsername returns one user or ErrUserNotFound.
	UserByUsername(ctx context.Context, username string) (User, error)

	// UserByEmail returns one user or ErrUserNotFound.
	UserByEmail(ctx context.Context, email string) (User, error)

	// UserByResetToken returns the user holding an outstanding reset
	// token, or ErrUserNotFound.
	UserByResetToken(ctx context.Context, token string) (User, error)

	// UpdateUser overwrites a user's mutable fields (email, password
	// hash, NAPFA membership, reset token, admin flag).
	UpdateUser(ctx context.Context, u User) error

	// ListUsers returns all users ordered by creation time.
	ListUsers(ctx context.Context) ([]User, error)
}

// =============================================================================
// ASSIGNMENT STORE - Which designations a user holds
// =============================================================================

type AssignmentStore interface {
	// CreateAssignment persists an assignment and assigns its ID.
	// Returns ErrDuplicateDesignation if the user already holds the code.
	CreateAssignment(ctx context.Context, a *DesignationAssignment) error

	// AssignmentsByUser returns a user's designations in creation order.
	AssignmentsByUser(ctx context.Context, userID UserID) ([]DesignationAssignment, error)

	// UpdateAssignment overwrites an assignment's birth month and state.
	UpdateAssignment(ctx context.Context, a DesignationAssignment) error

	// DeleteAssignment removes one designation from a user.
	DeleteAssignment(ctx context.Context, userID UserID, code Designation) error
}

// =============================================================================
// FEEDBACK STORE - Admin-facing feedback inbox
// =============================================================================

type FeedbackStore interface {
	// CreateFeedback persists a feedback entry and assigns its ID.
	CreateFeedback(ctx context.Context, f *Feedback) error

	// ListFeedback returns entries newest first. A nil read filter
	// returns everything; otherwise only entries matching the flag.
	ListFeedback(ctx context.Context, read *bool) ([]Feedback, error)

	// SetFeedbackRead marks one entry read or unread.
	SetFeedbackRead(ctx context.Context, id FeedbackID, read bool) error

	// DeleteFeedback removes an entry permanently.
	DeleteFeedback(ctx context.Context, id FeedbackID) error

	// CountFeedback returns total and unread entry counts.
	CountFeedback(ctx context.Context) (total, unread int, err error)
}

// =============================================================================
// SNAPSHOT STORE - Point-in-time compliance captures
// =============================================================================

type SnapshotStore interface {
	// SaveSnapshot persists one compliance capture.
	SaveSnapshot(ctx context.Context, snap ComplianceSnapshot) error

	// SnapshotsByUser returns a user's captures newest first, at most
	// limit entries (limit <= 0 means no cap).
	SnapshotsByUser(ctx context.Context, userID UserID, limit int) ([]ComplianceSnapshot, error)

	// LatestSnapshots returns the most recent capture per user and
	// designation, for the admin compliance overview.
	LatestSnapshots(ctx context.Context) ([]ComplianceSnapshot, error)
}

// =============================================================================
// COMPOSITE STORE + ADMIN QUERIES
// =============================================================================

// Store is what the API layer and CLI wire against.
type Store interface {
	UserStore
	AssignmentStore
	RecordStore
	FeedbackStore
	SnapshotStore
	AdminStore

	// Reset clears all data. Demo scenario loading and tests only.
	Reset(ctx context.Context) error

	// Close releases the underlying database handle.
	Close() error
}

// UserActivity summarizes one user's footprint for the admin dashboard.
type UserActivity struct {
	User             User
	RecordCount      int
	TotalHours       Amount
	DesignationCount int
}

// Overview carries the dashboard headline numbers.
type Overview struct {
	TotalUsers   int
	TotalRecords int
	NewUsers     int // users created on or after the 'since' cutoff
}

// AdminStore answers the aggregate queries behind the admin dashboard.
type AdminStore interface {
	// AdminOverview returns headline totals, counting users created on
	// or after since as new.
	AdminOverview(ctx context.Context, since TimePoint) (Overview, error)

	// UserActivityReport returns per-user record counts, hour totals,
	// and designation counts, ordered by record count descending.
	UserActivityReport(ctx context.Context) ([]UserActivity, error)
}
