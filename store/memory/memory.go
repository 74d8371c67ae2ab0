// Package memory provides an in-memory ce.Store for tests and demos.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairhaven/cetrack/ce"
)

// =============================================================================
// MEMORY STORE - Full ce.Store implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu          sync.RWMutex
	users       map[ce.UserID]ce.User
	assignments map[ce.AssignmentID]ce.DesignationAssignment
	records     map[ce.RecordID]ce.Record
	feedback    map[ce.FeedbackID]ce.Feedback
	snapshots   map[string]ce.ComplianceSnapshot
}

func New() *Store {
	return &Store{
		users:       make(map[ce.UserID]ce.User),
		assignments: make(map[ce.AssignmentID]ce.DesignationAssignment),
		records:     make(map[ce.RecordID]ce.Record),
		feedback:    make(map[ce.FeedbackID]ce.Feedback),
		snapshots:   make(map[string]ce.ComplianceSnapshot),
	}
}

func (s *Store) Close() error { return nil }

// Reset drops everything. Demo scenario loading and tests only.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[ce.UserID]ce.User)
	s.assignments = make(map[ce.AssignmentID]ce.DesignationAssignment)
	s.records = make(map[ce.RecordID]ce.Record)
	s.feedback = make(map[ce.FeedbackID]ce.Feedback)
	s.snapshots = make(map[string]ce.ComplianceSnapshot)
	return nil
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) CreateUser(_ context.Context, u *ce.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return ce.ErrDuplicateUsername
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return ce.ErrDuplicateEmail
		}
	}

	if u.ID == "" {
		u.ID = ce.UserID(uuid.New().String())
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UserByID(_ context.Context, id ce.UserID) (ce.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return ce.User{}, ce.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (ce.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return ce.User{}, ce.ErrUserNotFound
}

func (s *Store) UserByEmail(_ context.Context, email string) (ce.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return ce.User{}, ce.ErrUserNotFound
}

func (s *Store) UserByResetToken(_ context.Context, token string) (ce.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if token == "" {
		return ce.User{}, ce.ErrUserNotFound
	}
	for _, u := range s.users {
		if u.ResetToken == token {
			return u, nil
		}
	}
	return ce.User{}, ce.ErrUserNotFound
}

func (s *Store) UpdateUser(_ context.Context, u ce.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return ce.ErrUserNotFound
	}
	for _, existing := range s.users {
		if existing.ID == u.ID {
			continue
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return ce.ErrDuplicateEmail
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]ce.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ce.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// =============================================================================
// DESIGNATION ASSIGNMENTS
// =============================================================================

func (s *Store) CreateAssignment(_ context.Context, a *ce.DesignationAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.assignments {
		if existing.UserID == a.UserID && existing.Code == a.Code {
			return ce.ErrDuplicateDesignation
		}
	}

	if a.ID == "" {
		a.ID = ce.AssignmentID(uuid.New().String())
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.assignments[a.ID] = *a
	return nil
}

func (s *Store) AssignmentsByUser(_ context.Context, userID ce.UserID) ([]ce.DesignationAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ce.DesignationAssignment
	for _, a := range s.assignments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (s *Store) UpdateAssignment(_ context.Context, a ce.DesignationAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assignments[a.ID]; !ok {
		return ce.ErrAssignmentNotFound
	}
	s.assignments[a.ID] = a
	return nil
}

func (s *Store) DeleteAssignment(_ context.Context, userID ce.UserID, code ce.Designation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.assignments {
		if a.UserID == userID && a.Code == code {
			delete(s.assignments, id)
			return nil
		}
	}
	return ce.ErrAssignmentNotFound
}

// =============================================================================
// CE RECORDS
// =============================================================================

func (s *Store) CreateRecord(_ context.Context, rec *ce.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.duplicateLocked(rec.UserID, rec.Title, rec.CompletedOn, rec.Hours) {
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
	s.records[rec.ID] = *rec
	return nil
}

func (s *Store) RecordByID(_ context.Context, id ce.RecordID) (ce.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return ce.Record{}, ce.ErrRecordNotFound
	}
	return rec, nil
}

func (s *Store) UpdateRecord(_ context.Context, rec ce.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; !ok {
		return ce.ErrRecordNotFound
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *Store) DeleteRecord(_ context.Context, id ce.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ce.ErrRecordNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *Store) RecordsByUser(_ context.Context, userID ce.UserID) ([]ce.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ce.Record
	for _, rec := range s.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	// Newest first for list views and exports.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CompletedOn.Equal(out[j].CompletedOn) {
			return out[i].CompletedOn.After(out[j].CompletedOn)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) RecordsInRange(_ context.Context, userID ce.UserID, from, to ce.TimePoint) ([]ce.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ce.Record
	for _, rec := range s.records {
		if rec.UserID == userID && from.BeforeOrEqual(rec.CompletedOn) && rec.CompletedOn.BeforeOrEqual(to) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CompletedOn.Equal(out[j].CompletedOn) {
			return out[i].CompletedOn.Before(out[j].CompletedOn)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) RecordExists(_ context.Context, userID ce.UserID, title string, completedOn ce.TimePoint, hours ce.Amount) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duplicateLocked(userID, title, completedOn, hours), nil
}

func (s *Store) duplicateLocked(userID ce.UserID, title string, completedOn ce.TimePoint, hours ce.Amount) bool {
	for _, rec := range s.records {
		if rec.UserID == userID &&
			rec.Title == title &&
			rec.CompletedOn.Equal(completedOn) &&
			rec.Hours.Value.Equal(hours.Value) {
			return true
		}
	}
	return false
}

// =============================================================================
// FEEDBACK
// =============================================================================

func (s *Store) CreateFeedback(_ context.Context, f *ce.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = ce.FeedbackID(uuid.New().String())
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	s.feedback[f.ID] = *f
	return nil
}

func (s *Store) ListFeedback(_ context.Context, read *bool) ([]ce.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ce.Feedback
	for _, f := range s.feedback {
		if read != nil && f.Read != *read {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) SetFeedbackRead(_ context.Context, id ce.FeedbackID, read bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.feedback[id]
	if !ok {
		return ce.ErrFeedbackNotFound
	}
	f.Read = read
	s.feedback[id] = f
	return nil
}

func (s *Store) DeleteFeedback(_ context.Context, id ce.FeedbackID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.feedback[id]; !ok {
		return ce.ErrFeedbackNotFound
	}
	delete(s.feedback, id)
	return nil
}

func (s *Store) CountFeedback(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.feedback)
	unread := 0
	for _, f := range s.feedback {
		if !f.Read {
			unread++
		}
	}
	return total, unread, nil
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func (s *Store) SaveSnapshot(_ context.Context, snap ce.ComplianceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	s.snapshots[snap.ID] = snap
	return nil
}

func (s *Store) SnapshotsByUser(_ context.Context, userID ce.UserID, limit int) ([]ce.ComplianceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ce.ComplianceSnapshot
	for _, snap := range s.snapshots {
		if snap.UserID == userID {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TakenOn.Equal(out[j].TakenOn) {
			return out[i].TakenOn.After(out[j].TakenOn)
		}
		return out[i].Designation < out[j].Designation
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) LatestSnapshots(_ context.Context) ([]ce.ComplianceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type pair struct {
		user ce.UserID
		code ce.Designation
	}
	latest := map[pair]ce.ComplianceSnapshot{}
	for _, snap := range s.snapshots {
		k := pair{snap.UserID, snap.Designation}
		cur, ok := latest[k]
		if !ok || snap.TakenOn.After(cur.TakenOn) {
			latest[k] = snap
		}
	}

	out := make([]ce.ComplianceSnapshot, 0, len(latest))
	for _, snap := range latest {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Designation < out[j].Designation
	})
	return out, nil
}

// =============================================================================
// ADMIN QUERIES
// =============================================================================

func (s *Store) AdminOverview(_ context.Context, since ce.TimePoint) (ce.Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ov := ce.Overview{
		TotalUsers:   len(s.users),
		TotalRecords: len(s.records),
	}
	for _, u := range s.users {
		if since.BeforeOrEqual(ce.DateOf(u.CreatedAt)) {
			ov.NewUsers++
		}
	}
	return ov, nil
}

func (s *Store) UserActivityReport(_ context.Context) ([]ce.UserActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byUser := map[ce.UserID]*ce.UserActivity{}
	for _, u := range s.users {
		byUser[u.ID] = &ce.UserActivity{User: u, TotalHours: ce.Hours(0)}
	}
	for _, rec := range s.records {
		if ua, ok := byUser[rec.UserID]; ok {
			ua.RecordCount++
			ua.TotalHours = ua.TotalHours.Add(rec.Hours)
		}
	}
	for _, a := range s.assignments {
		if ua, ok := byUser[a.UserID]; ok {
			ua.DesignationCount++
		}
	}

	out := make([]ce.UserActivity, 0, len(byUser))
	for _, ua := range byUser {
		out = append(out, *ua)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RecordCount != out[j].RecordCount {
			return out[i].RecordCount > out[j].RecordCount
		}
		return out[i].User.Username < out[j].User.Username
	})
	return out, nil
}
