/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the full persistence surface (ce.Store) using SQLite. In
  production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

INTERFACES IMPLEMENTED:
  ce.UserStore:       Accounts, credentials, reset tokens
  ce.AssignmentStore: Designation-to-user links
  ce.RecordStore:     CE record CRUD and duplicate detection
  ce.FeedbackStore:   Admin feedback inbox
  ce.SnapshotStore:   Compliance captures
  ce.AdminStore:      Dashboard aggregates

KEY TABLES:
  users:        Accounts with NAPFA membership and reset-token state
  assignments:  One row per (user, designation code)
  records:      Completed CE activities
  feedback:     User-submitted feedback
  snapshots:    Point-in-time compliance captures

INDEXES:
  - idx_records_user_completed: Window queries for requirement
    calculation (hot path)
  - idx_users_username / idx_users_email: Case-insensitive uniqueness
  - assignments UNIQUE(user_id, code): One designation per user

DUPLICATE RECORDS:
  Record uniqueness is on (user, title, completion date, hours). Hours
  are stored as decimal strings, so the check compares decimals in Go
  rather than trusting string equality; CreateRecord runs it under the
  write lock before inserting.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/cetrack.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  calc := &ce.Calculator{Source: store, Registry: reg, Assignments: store}

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ce/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/fairhaven/cetrack/ce"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Users (accounts)
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		is_napfa_member BOOLEAN NOT NULL DEFAULT FALSE,
		napfa_join_date TEXT,
		reset_token TEXT,
		reset_token_expiry TEXT,
		created_at TEXT NOT NULL
	);

	-- Uniqueness is case-insensitive: "Alice" and "alice" are the same account
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username
		ON users(username COLLATE NOCASE);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
		ON users(email COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_users_reset_token
		ON users(reset_token) WHERE reset_token IS NOT NULL;

	-- Designation assignments (one row per credential a user holds)
	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		birth_month INTEGER NOT NULL DEFAULT 0,
		state TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		UNIQUE(user_id, code)
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_user
		ON assignments(user_id);

	-- CE records (completed activities)
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		provider TEXT NOT NULL DEFAULT '',
		hours_value TEXT NOT NULL,
		hours_unit TEXT NOT NULL DEFAULT 'hours',
		completed_on TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		napfa_approved BOOLEAN NOT NULL DEFAULT FALSE,
		ethics_course BOOLEAN NOT NULL DEFAULT FALSE,
		napfa_subject_area TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Composite index for period window queries (hot path)
	CREATE INDEX IF NOT EXISTS idx_records_user_completed
		ON records(user_id, completed_on);

	-- For duplicate detection on (user, title, date)
	CREATE INDEX IF NOT EXISTS idx_records_user_title
		ON records(user_id, title, completed_on);

	-- Feedback inbox
	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_feedback_read
		ON feedback(is_read);

	-- Compliance snapshots. IDs are deterministic per (user, code, day),
	-- so re-capturing the same day overwrites instead of duplicating.
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		designation TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		taken_on TEXT NOT NULL,
		reason TEXT NOT NULL,
		total_required TEXT NOT NULL,
		total_earned TEXT NOT NULL,
		total_percent REAL NOT NULL,
		complete BOOLEAN NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_user_taken
		ON snapshots(user_id, taken_on DESC);
	CREATE INDEX IF NOT EXISTS idx_snapshots_user_designation
		ON snapshots(user_id, designation, taken_on DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USER STORE (ce.UserStore interface)
// =============================================================================

// CreateUser persists a user and assigns its ID.
func (s *Store) CreateUser(ctx context.Context, u *ce.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = ce.UserID(uuid.New().String())
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users
		(id, username, email, password_hash, is_admin, is_napfa_member,
		 napfa_join_date, reset_token, reset_token_expiry, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.NapfaMember,
		nullTimePoint(u.NapfaJoinDate),
		nullString(u.ResetToken),
		nullTime(u.ResetTokenExpiry),
		u.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			if strings.Contains(err.Error(), "users.email") {
				return ce.ErrDuplicateEmail
			}
			return ce.ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UserByID returns one user or ErrUserNotFound.
func (s *Store) UserByID(ctx context.Context, id ce.UserID) (ce.User, error) {
	return s.userBy(ctx, "id = ?", string(id))
}

// UserByUsername returns one user or ErrUserNotFound.
func (s *Store) UserByUsername(ctx context.Context, username string) (ce.User, error) {
	return s.userBy(ctx, "username = ? COLLATE NOCASE", username)
}

// UserByEmail returns one user or ErrUserNotFound.
func (s *Store) UserByEmail(ctx context.Context, email string) (ce.User, error) {
	return s.userBy(ctx, "email = ? COLLATE NOCASE", email)
}

// UserByResetToken returns the user holding an outstanding reset token.
func (s *Store) UserByResetToken(ctx context.Context, token string) (ce.User, error) {
	if token == "" {
		return ce.User{}, ce.ErrUserNotFound
	}
	return s.userBy(ctx, "reset_token = ?", token)
}

func (s *Store) userBy(ctx context.Context, where string, arg any) (ce.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, username, email, password_hash, is_admin, is_napfa_member,
		       napfa_join_date, reset_token, reset_token_expiry, created_at
		FROM users
		WHERE ` + where

	row := s.db.QueryRowContext(ctx, query, arg)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return ce.User{}, ce.ErrUserNotFound
	}
	if err != nil {
		return ce.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

// UpdateUser overwrites a user's mutable fields. The username is fixed
// at registration.
func (s *Store) UpdateUser(ctx context.Context, u ce.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE users SET
			email = ?,
			password_hash = ?,
			is_admin = ?,
			is_napfa_member = ?,
			napfa_join_date = ?,
			reset_token = ?,
			reset_token_expiry = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		u.Email, u.PasswordHash, u.IsAdmin, u.NapfaMember,
		nullTimePoint(u.NapfaJoinDate),
		nullString(u.ResetToken),
		nullTime(u.ResetTokenExpiry),
		u.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ce.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ce.ErrUserNotFound
	}
	return nil
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]ce.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, username, email, password_hash, is_admin, is_napfa_member,
		       napfa_join_date, reset_token, reset_token_expiry, created_at
		FROM users
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []ce.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (ce.User, error) {
	var (
		u                ce.User
		joinDate         sql.NullString
		resetToken       sql.NullString
		resetTokenExpiry sql.NullString
		createdAt        string
	)

	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.NapfaMember,
		&joinDate, &resetToken, &resetTokenExpiry, &createdAt,
	)
	if err != nil {
		return u, err
	}

	if joinDate.Valid && joinDate.String != "" {
		tp, perr := ce.ParseDate(joinDate.String)
		if perr == nil {
			u.NapfaJoinDate = &tp
		}
	}
	u.ResetToken = resetToken.String
	if resetTokenExpiry.Valid {
		t, perr := time.Parse(time.RFC3339, resetTokenExpiry.String)
		if perr == nil {
			u.ResetTokenExpiry = &t
		}
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return u, nil
}

// =============================================================================
// ASSIGNMENT STORE (ce.AssignmentStore interface)
// =============================================================================

// CreateAssignment persists a designation assignment.
func (s *Store) CreateAssignment(ctx context.Context, a *ce.DesignationAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = ce.AssignmentID(uuid.New().String())
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO assignments (id, user_id, code, birth_month, state, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.Code, a.BirthMonth, a.State,
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ce.ErrDuplicateDesignation
		}
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

// AssignmentsByUser returns a user's designations in creation order.
func (s *Store) AssignmentsByUser(ctx context.Context, userID ce.UserID) ([]ce.DesignationAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, code, birth_month, state, created_at
		FROM assignments
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []ce.DesignationAssignment
	for rows.Next() {
		var a ce.DesignationAssignment
		var createdAt string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Code, &a.BirthMonth, &a.State, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// UpdateAssignment overwrites an assignment's anchor fields.
func (s *Store) UpdateAssignment(ctx context.Context, a ce.DesignationAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE assignments SET birth_month = ?, state = ? WHERE id = ?",
		a.BirthMonth, a.State, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ce.ErrAssignmentNotFound
	}
	return nil
}

// DeleteAssignment removes one designation from a user.
func (s *Store) DeleteAssignment(ctx context.Context, userID ce.UserID, code ce.Designation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM assignments WHERE user_id = ? AND code = ?",
		userID, code,
	)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ce.ErrAssignmentNotFound
	}
	return nil
}

// =============================================================================
// RECORD STORE (ce.RecordStore interface)
// =============================================================================

// CreateRecord persists a record, refusing exact duplicates.
func (s *Store) CreateRecord(ctx context.Context, rec *ce.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dup, err := s.recordExists(ctx, rec.UserID, rec.Title, rec.CompletedOn, rec.Hours)
	if err != nil {
		return err
	}
	if dup {
		return &ce.DuplicateRecordError{
			UserID:      rec.UserID,
			Title:       rec.Title,
			CompletedOn: rec.CompletedOn,
			Hours:       rec.Hours,
		}
	}

	if rec.ID == "" {
		rec.ID = ce.RecordID(uuid.New().String())
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO records
		(id, user_id, title, provider, hours_value, hours_unit, completed_on,
		 category, description, napfa_approved, ethics_course, napfa_subject_area, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.Title, rec.Provider,
		rec.Hours.Value.String(), rec.Hours.Unit,
		rec.CompletedOn.String(),
		rec.Category, rec.Description,
		rec.NapfaApproved, rec.EthicsCourse, rec.NapfaSubjectArea,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// RecordByID returns one record or ErrRecordNotFound.
func (s *Store) RecordByID(ctx context.Context, id ce.RecordID) (ce.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, title, provider, hours_value, hours_unit, completed_on,
		       category, description, napfa_approved, ethics_course, napfa_subject_area, created_at
		FROM records
		WHERE id = ?
	`

	recs, err := s.queryRecords(ctx, query, id)
	if err != nil {
		return ce.Record{}, err
	}
	if len(recs) == 0 {
		return ce.Record{}, ce.ErrRecordNotFound
	}
	return recs[0], nil
}

// UpdateRecord overwrites an existing record's mutable fields.
func (s *Store) UpdateRecord(ctx context.Context, rec ce.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE records SET
			title = ?,
			provider = ?,
			hours_value = ?,
			hours_unit = ?,
			completed_on = ?,
			category = ?,
			description = ?,
			napfa_approved = ?,
			ethics_course = ?,
			napfa_subject_area = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		rec.Title, rec.Provider,
		rec.Hours.Value.String(), rec.Hours.Unit,
		rec.CompletedOn.String(),
		rec.Category, rec.Description,
		rec.NapfaApproved, rec.EthicsCourse, rec.NapfaSubjectArea,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ce.ErrRecordNotFound
	}
	return nil
}

// DeleteRecord removes a record permanently.
func (s *Store) DeleteRecord(ctx context.Context, id ce.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ce.ErrRecordNotFound
	}
	return nil
}

// RecordsByUser returns all of a user's records, newest first.
func (s *Store) RecordsByUser(ctx context.Context, userID ce.UserID) ([]ce.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, title, provider, hours_value, hours_unit, completed_on,
		       category, description, napfa_approved, ethics_course, napfa_subject_area, created_at
		FROM records
		WHERE user_id = ?
		ORDER BY completed_on DESC, created_at DESC
	`

	return s.queryRecords(ctx, query, userID)
}

// RecordsInRange returns records with from <= CompletedOn <= to, oldest
// first. This is the calculator's hot path.
func (s *Store) RecordsInRange(ctx context.Context, userID ce.UserID, from, to ce.TimePoint) ([]ce.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, title, provider, hours_value, hours_unit, completed_on,
		       category, description, napfa_approved, ethics_course, napfa_subject_area, created_at
		FROM records
		WHERE user_id = ? AND completed_on >= ? AND completed_on <= ?
		ORDER BY completed_on ASC, created_at ASC
	`

	return s.queryRecords(ctx, query, userID, from.String(), to.String())
}

// RecordExists reports whether an identical record already exists.
func (s *Store) RecordExists(ctx context.Context, userID ce.UserID, title string, completedOn ce.TimePoint, hours ce.Amount) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.recordExists(ctx, userID, title, completedOn, hours)
}

// recordExists compares hours as decimals in Go: "2", "2.0", and "2.00"
// are the same quantity, and their stored strings may differ.
func (s *Store) recordExists(ctx context.Context, userID ce.UserID, title string, completedOn ce.TimePoint, hours ce.Amount) (bool, error) {
	query := `
		SELECT hours_value FROM records
		WHERE user_id = ? AND title = ? AND completed_on = ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, title, completedOn.String())
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate record: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return false, err
		}
		existing, err := decimal.NewFromString(value)
		if err != nil {
			continue
		}
		if existing.Equal(hours.Value) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]ce.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []ce.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (ce.Record, error) {
	var (
		rec         ce.Record
		hoursValue  string
		hoursUnit   string
		completedOn string
		createdAt   string
	)

	err := rows.Scan(
		&rec.ID, &rec.UserID, &rec.Title, &rec.Provider,
		&hoursValue, &hoursUnit, &completedOn,
		&rec.Category, &rec.Description,
		&rec.NapfaApproved, &rec.EthicsCourse, &rec.NapfaSubjectArea,
		&createdAt,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan record: %w", err)
	}

	rec.Hours = parseAmount(hoursValue, hoursUnit)
	rec.CompletedOn, _ = ce.ParseDate(completedOn)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return rec, nil
}

// =============================================================================
// FEEDBACK STORE (ce.FeedbackStore interface)
// =============================================================================

// CreateFeedback persists a feedback entry.
func (s *Store) CreateFeedback(ctx context.Context, f *ce.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = ce.FeedbackID(uuid.New().String())
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO feedback (id, name, email, type, message, user_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		f.ID, f.Name, f.Email, f.Type, f.Message, f.UserID, f.Read,
		f.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// ListFeedback returns entries newest first, optionally filtered by
// read state.
func (s *Store) ListFeedback(ctx context.Context, read *bool) ([]ce.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var query string
	var args []any

	if read != nil {
		query = `
			SELECT id, name, email, type, message, user_id, is_read, created_at
			FROM feedback
			WHERE is_read = ?
			ORDER BY created_at DESC
		`
		args = []any{*read}
	} else {
		query = `
			SELECT id, name, email, type, message, user_id, is_read, created_at
			FROM feedback
			ORDER BY created_at DESC
		`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var entries []ce.Feedback
	for rows.Next() {
		var f ce.Feedback
		var createdAt string
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.Type, &f.Message, &f.UserID, &f.Read, &createdAt); err != nil {
			return nil, err
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, f)
	}
	return entries, rows.Err()
}

// SetFeedbackRead marks one entry read or unread.
func (s *Store) SetFeedbackRead(ctx context.Context, id ce.FeedbackID, read bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE feedback SET is_read = ? WHERE id = ?", read, id)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ce.ErrFeedbackNotFound
	}
	return nil
}

// DeleteFeedback removes an entry permanently.
func (s *Store) DeleteFeedback(ctx context.Context, id ce.FeedbackID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM feedback WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ce.ErrFeedbackNotFound
	}
	return nil
}

// CountFeedback returns total and unread entry counts.
func (s *Store) CountFeedback(ctx context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total, unread int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_read = 0 THEN 1 ELSE 0 END), 0) FROM feedback",
	).Scan(&total, &unread)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return total, unread, nil
}

// =============================================================================
// SNAPSHOT STORE (ce.SnapshotStore interface)
// =============================================================================

// SaveSnapshot persists one compliance capture, overwriting any earlier
// capture with the same ID.
func (s *Store) SaveSnapshot(ctx context.Context, snap ce.ComplianceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO snapshots
		(id, user_id, designation, period_start, period_end, taken_on, reason,
		 total_required, total_earned, total_percent, complete, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			period_start = excluded.period_start,
			period_end = excluded.period_end,
			reason = excluded.reason,
			total_required = excluded.total_required,
			total_earned = excluded.total_earned,
			total_percent = excluded.total_percent,
			complete = excluded.complete,
			created_at = excluded.created_at
	`

	_, err := s.db.ExecContext(ctx, query,
		snap.ID, snap.UserID, snap.Designation,
		snap.Period.Start.String(), snap.Period.End.String(),
		snap.TakenOn.String(), snap.Reason,
		snap.TotalRequired.Value.String(), snap.TotalEarned.Value.String(),
		snap.TotalPercent, snap.Complete,
		snap.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// SnapshotsByUser returns a user's captures newest first.
func (s *Store) SnapshotsByUser(ctx context.Context, userID ce.UserID, limit int) ([]ce.ComplianceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	query := `
		SELECT id, user_id, designation, period_start, period_end, taken_on, reason,
		       total_required, total_earned, total_percent, complete, created_at
		FROM snapshots
		WHERE user_id = ?
		ORDER BY taken_on DESC, created_at DESC
		LIMIT ?
	`

	return s.querySnapshots(ctx, query, userID, limit)
}

// LatestSnapshots returns the most recent capture per user and
// designation, for the admin compliance overview.
func (s *Store) LatestSnapshots(ctx context.Context) ([]ce.ComplianceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT s.id, s.user_id, s.designation, s.period_start, s.period_end, s.taken_on, s.reason,
		       s.total_required, s.total_earned, s.total_percent, s.complete, s.created_at
		FROM snapshots s
		JOIN (
			SELECT user_id, designation, MAX(taken_on) AS latest
			FROM snapshots
			GROUP BY user_id, designation
		) m ON s.user_id = m.user_id AND s.designation = m.designation AND s.taken_on = m.latest
		ORDER BY s.user_id ASC, s.designation ASC
	`

	return s.querySnapshots(ctx, query)
}

func (s *Store) querySnapshots(ctx context.Context, query string, args ...any) ([]ce.ComplianceSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []ce.ComplianceSnapshot
	for rows.Next() {
		var (
			snap                       ce.ComplianceSnapshot
			periodStart, periodEnd     string
			takenOn, reason            string
			totalRequired, totalEarned string
			createdAt                  string
		)
		if err := rows.Scan(
			&snap.ID, &snap.UserID, &snap.Designation,
			&periodStart, &periodEnd, &takenOn, &reason,
			&totalRequired, &totalEarned, &snap.TotalPercent, &snap.Complete,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		snap.Period.Start, _ = ce.ParseDate(periodStart)
		snap.Period.End, _ = ce.ParseDate(periodEnd)
		snap.TakenOn, _ = ce.ParseDate(takenOn)
		snap.Reason = ce.SnapshotReason(reason)
		snap.TotalRequired = parseAmount(totalRequired, string(ce.UnitHours))
		snap.TotalEarned = parseAmount(totalEarned, string(ce.UnitHours))
		snap.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// =============================================================================
// ADMIN STORE (ce.AdminStore interface)
// =============================================================================

// AdminOverview returns headline totals for the admin dashboard.
func (s *Store) AdminOverview(ctx context.Context, since ce.TimePoint) (ce.Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var o ce.Overview

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&o.TotalUsers); err != nil {
		return o, fmt.Errorf("failed to count users: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&o.TotalRecords); err != nil {
		return o, fmt.Errorf("failed to count records: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE DATE(created_at) >= ?", since.String(),
	).Scan(&o.NewUsers); err != nil {
		return o, fmt.Errorf("failed to count new users: %w", err)
	}

	return o, nil
}

// UserActivityReport returns per-user totals, most active first.
func (s *Store) UserActivityReport(ctx context.Context) ([]ce.UserActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.is_admin, u.is_napfa_member,
		       u.napfa_join_date, u.reset_token, u.reset_token_expiry, u.created_at,
		       COUNT(r.id) AS record_count,
		       COALESCE(SUM(CAST(r.hours_value AS REAL)), 0) AS total_hours,
		       (SELECT COUNT(*) FROM assignments a WHERE a.user_id = u.id) AS designation_count
		FROM users u
		LEFT JOIN records r ON r.user_id = u.id
		GROUP BY u.id
		ORDER BY record_count DESC, u.username ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query user activity: %w", err)
	}
	defer rows.Close()

	var report []ce.UserActivity
	for rows.Next() {
		var (
			act              ce.UserActivity
			joinDate         sql.NullString
			resetToken       sql.NullString
			resetTokenExpiry sql.NullString
			createdAt        string
			totalHours       float64
		)
		if err := rows.Scan(
			&act.User.ID, &act.User.Username, &act.User.Email, &act.User.PasswordHash,
			&act.User.IsAdmin, &act.User.NapfaMember,
			&joinDate, &resetToken, &resetTokenExpiry, &createdAt,
			&act.RecordCount, &totalHours, &act.DesignationCount,
		); err != nil {
			return nil, err
		}

		if joinDate.Valid && joinDate.String != "" {
			tp, perr := ce.ParseDate(joinDate.String)
			if perr == nil {
				act.User.NapfaJoinDate = &tp
			}
		}
		act.User.ResetToken = resetToken.String
		if resetTokenExpiry.Valid {
			t, perr := time.Parse(time.RFC3339, resetTokenExpiry.String)
			if perr == nil {
				act.User.ResetTokenExpiry = &t
			}
		}
		act.User.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		act.TotalHours = ce.Hours(totalHours)

		report = append(report, act)
	}
	return report, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"snapshots", "feedback", "records", "assignments", "users"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func nullTimePoint(tp *ce.TimePoint) sql.NullString {
	if tp == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: tp.String(), Valid: true}
}

func parseAmount(value, unit string) ce.Amount {
	v, err := decimal.NewFromString(value)
	if err != nil {
		v = decimal.Zero
	}
	return ce.Amount{Value: v, Unit: ce.Unit(unit)}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
