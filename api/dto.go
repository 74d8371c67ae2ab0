/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract: Amount becomes
  a float, TimePoint becomes "2006-01-02", and internal IDs stay strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - auth.go, records.go, requirements.go, admin.go: Producers/consumers
  - ce/aggregate.go: The Progress type flattened by toProgressDTO
*/
package api

import (
	"time"

	"github.com/fairhaven/cetrack/ce"
	"github.com/fairhaven/cetrack/napfa"
	"github.com/fairhaven/cetrack/transfer"
)

// =============================================================================
// AUTH
// =============================================================================

// DesignationInput is one designation in a register or add request.
type DesignationInput struct {
	Code       string `json:"code"`
	BirthMonth int    `json:"birth_month,omitempty"`
	State      string `json:"state,omitempty"`
}

// RegisterRequest is the request to create an account.
type RegisterRequest struct {
	Username        string             `json:"username"`
	Email           string             `json:"email"`
	Password        string             `json:"password"`
	ConfirmPassword string             `json:"confirm_password"`
	DisclaimerAck   bool               `json:"disclaimer_ack"`
	Designations    []DesignationInput `json:"designations,omitempty"`
	NapfaMember     bool               `json:"napfa_member,omitempty"`
	NapfaJoinDate   string             `json:"napfa_join_date,omitempty"`
}

// LoginRequest is the request to authenticate.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the bearer token after register/login.
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// ForgotPasswordRequest asks for a reset email.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest redeems a reset token.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// =============================================================================
// USERS AND PROFILE
// =============================================================================

// UserDTO represents a user in API responses. Password material never
// leaves the server.
type UserDTO struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	IsAdmin       bool    `json:"is_admin"`
	NapfaMember   bool    `json:"napfa_member"`
	NapfaJoinDate *string `json:"napfa_join_date,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// ProfileResponse is the account page payload.
type ProfileResponse struct {
	User             UserDTO `json:"user"`
	DesignationCount int     `json:"designation_count"`
}

// UpdateEmailRequest changes the account email.
type UpdateEmailRequest struct {
	Email string `json:"email"`
}

// UpdatePasswordRequest changes the account password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// UpdateNapfaRequest changes NAPFA membership.
type UpdateNapfaRequest struct {
	Member   bool   `json:"member"`
	JoinDate string `json:"join_date,omitempty"`
}

// =============================================================================
// DESIGNATIONS
// =============================================================================

// DesignationDTO is one allowed designation, annotated with whether the
// requesting user holds it.
type DesignationDTO struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Held        bool   `json:"held"`
	BirthMonth  int    `json:"birth_month,omitempty"`
	State       string `json:"state,omitempty"`
}

// =============================================================================
// CE RECORDS
// =============================================================================

// RecordDTO represents a CE record in API responses.
type RecordDTO struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Provider         string  `json:"provider,omitempty"`
	Category         string  `json:"category,omitempty"`
	Description      string  `json:"description,omitempty"`
	Hours            float64 `json:"hours"`
	DateCompleted    string  `json:"date_completed"`
	IsNapfaApproved  bool    `json:"is_napfa_approved"`
	IsEthicsCourse   bool    `json:"is_ethics_course"`
	NapfaSubjectArea string  `json:"napfa_subject_area,omitempty"`
	CreatedAt        string  `json:"created_at,omitempty"`
}

// RecordsResponse is the dashboard listing: the (possibly filtered)
// records plus the distinct categories and hour total used by the
// filter bar.
type RecordsResponse struct {
	Records    []RecordDTO `json:"records"`
	Categories []string    `json:"categories"`
	TotalHours float64     `json:"total_hours"`
}

// SaveRecordRequest creates or updates a CE record.
type SaveRecordRequest struct {
	Title            string  `json:"title"`
	Provider         string  `json:"provider"`
	Category         string  `json:"category"`
	Description      string  `json:"description"`
	Hours            float64 `json:"hours"`
	DateCompleted    string  `json:"date_completed"`
	IsNapfaApproved  bool    `json:"is_napfa_approved"`
	IsEthicsCourse   bool    `json:"is_ethics_course"`
	NapfaSubjectArea string  `json:"napfa_subject_area"`
}

// =============================================================================
// REQUIREMENTS
// =============================================================================

// RequirementsResponse is the standing of every tracked designation the
// user holds, plus the NAPFA cycle when they are a member.
type RequirementsResponse struct {
	AsOf         string         `json:"as_of"`
	Designations []ProgressDTO  `json:"designations"`
	Napfa        *NapfaCycleDTO `json:"napfa,omitempty"`
}

// ProgressDTO flattens one designation's Progress for the dashboard.
type ProgressDTO struct {
	Designation    string           `json:"designation"`
	State          string           `json:"state,omitempty"`
	PeriodStart    string           `json:"period_start"`
	PeriodEnd      string           `json:"period_end"`
	TotalRequired  float64          `json:"total_required"`
	TotalEarned    float64          `json:"total_earned"`
	TotalRemaining float64          `json:"total_remaining"`
	TotalPercent   float64          `json:"total_percent"`
	Complete       bool             `json:"complete"`
	Subs           []SubProgressDTO `json:"subs,omitempty"`
	AdminFee       *float64         `json:"admin_fee,omitempty"`
	WaiverHours    *float64         `json:"volunteer_waiver_hours,omitempty"`
	Pace           *PaceDTO         `json:"pace,omitempty"`
}

// SubProgressDTO is one nested minimum.
type SubProgressDTO struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Required    float64 `json:"required"`
	Earned      float64 `json:"earned"`
	Remaining   float64 `json:"remaining"`
	Percent     float64 `json:"percent"`
	Complete    bool    `json:"complete"`
	WindowStart string  `json:"window_start,omitempty"`
	WindowEnd   string  `json:"window_end,omitempty"`
}

// PaceDTO compares earned hours against the linear expectation.
type PaceDTO struct {
	ElapsedDays     int     `json:"elapsed_days"`
	TotalDays       int     `json:"total_days"`
	ElapsedFraction float64 `json:"elapsed_fraction"`
	ExpectedHours   float64 `json:"expected_hours"`
	EarnedHours     float64 `json:"earned_hours"`
	OnTrack         bool    `json:"on_track"`
}

// NapfaCycleDTO is the member's NAPFA standing.
type NapfaCycleDTO struct {
	CycleStart        string  `json:"cycle_start"`
	CycleEnd          string  `json:"cycle_end"`
	TotalRequired     float64 `json:"total_required"`
	TotalEarned       float64 `json:"total_earned"`
	TotalRemaining    float64 `json:"total_remaining"`
	TotalPercent      float64 `json:"total_percent"`
	ApprovedRequired  float64 `json:"approved_required"`
	ApprovedEarned    float64 `json:"approved_earned"`
	ApprovedRemaining float64 `json:"approved_remaining"`
	ApprovedPercent   float64 `json:"approved_percent"`
	EthicsCompleted   bool    `json:"ethics_completed"`
	Complete          bool    `json:"complete"`
}

// PreviewRequest asks "what if I complete this course?".
type PreviewRequest struct {
	Designation     string  `json:"designation"`
	Title           string  `json:"title"`
	Category        string  `json:"category"`
	Hours           float64 `json:"hours"`
	DateCompleted   string  `json:"date_completed"`
	IsNapfaApproved bool    `json:"is_napfa_approved"`
	IsEthicsCourse  bool    `json:"is_ethics_course"`
}

// PreviewResponse holds before/after standings.
type PreviewResponse struct {
	Before             ProgressDTO `json:"before"`
	After              ProgressDTO `json:"after"`
	CountsTowardPeriod bool        `json:"counts_toward_period"`
	NewlyComplete      bool        `json:"newly_complete"`
	NewlyCompleteSubs  []string    `json:"newly_complete_subs,omitempty"`
}

// =============================================================================
// ANALYTICS
// =============================================================================

type AnalyticsResponse struct {
	TotalRecords  int                `json:"total_records"`
	TotalHours    float64            `json:"total_hours"`
	AverageHours  float64            `json:"average_hours"`
	CategoryCount int                `json:"category_count"`
	Categories    []CategoryHoursDTO `json:"categories"`
	Monthly       []MonthlyHoursDTO  `json:"monthly"`
	Yearly        []YearlyHoursDTO   `json:"yearly"`
	Providers     []ProviderHoursDTO `json:"providers"`
}

type CategoryHoursDTO struct {
	Category string  `json:"category"`
	Hours    float64 `json:"hours"`
	Records  int     `json:"records"`
}

type MonthlyHoursDTO struct {
	Label string  `json:"label"`
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Hours float64 `json:"hours"`
}

type YearlyHoursDTO struct {
	Year  int     `json:"year"`
	Hours float64 `json:"hours"`
}

type ProviderHoursDTO struct {
	Provider string  `json:"provider"`
	Hours    float64 `json:"hours"`
	Records  int     `json:"records"`
}

// =============================================================================
// TRANSFER
// =============================================================================

// ImportResultDTO reports a CSV or backup import.
type ImportResultDTO struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message"`
	Notes    string `json:"notes,omitempty"`
}

// =============================================================================
// FEEDBACK
// =============================================================================

// FeedbackRequest submits feedback; works logged in or out.
type FeedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// FeedbackDTO is one inbox entry for admins.
type FeedbackDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	UserID    string `json:"user_id,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// FeedbackListResponse is the inbox plus its counters.
type FeedbackListResponse struct {
	Feedback []FeedbackDTO `json:"feedback"`
	Total    int           `json:"total"`
	Unread   int           `json:"unread"`
}

// =============================================================================
// ADMIN
// =============================================================================

// AdminStatsResponse is the dashboard payload.
type AdminStatsResponse struct {
	TotalUsers   int               `json:"total_users"`
	TotalRecords int               `json:"total_records"`
	TotalHours   float64           `json:"total_hours"`
	NewUsers     int               `json:"new_users"`
	TopUsers     []UserActivityDTO `json:"top_users"`
	Users        []UserActivityDTO `json:"users"`
}

// UserActivityDTO is one user's footprint.
type UserActivityDTO struct {
	User             UserDTO `json:"user"`
	RecordCount      int     `json:"record_count"`
	TotalHours       float64 `json:"total_hours"`
	DesignationCount int     `json:"designation_count"`
}

// SnapshotDTO is one compliance capture in the admin overview.
type SnapshotDTO struct {
	UserID        string  `json:"user_id"`
	Username      string  `json:"username,omitempty"`
	Designation   string  `json:"designation"`
	PeriodStart   string  `json:"period_start"`
	PeriodEnd     string  `json:"period_end"`
	TakenOn       string  `json:"taken_on"`
	Reason        string  `json:"reason"`
	TotalRequired float64 `json:"total_required"`
	TotalEarned   float64 `json:"total_earned"`
	TotalPercent  float64 `json:"total_percent"`
	Complete      bool    `json:"complete"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toUserDTO(u ce.User) UserDTO {
	dto := UserDTO{
		ID:          string(u.ID),
		Username:    u.Username,
		Email:       u.Email,
		IsAdmin:     u.IsAdmin,
		NapfaMember: u.NapfaMember,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
	if u.NapfaJoinDate != nil {
		joined := u.NapfaJoinDate.String()
		dto.NapfaJoinDate = &joined
	}
	return dto
}

func toRecordDTO(rec ce.Record) RecordDTO {
	return RecordDTO{
		ID:               string(rec.ID),
		Title:            rec.Title,
		Provider:         rec.Provider,
		Category:         rec.Category,
		Description:      rec.Description,
		Hours:            rec.Hours.Float64(),
		DateCompleted:    rec.CompletedOn.String(),
		IsNapfaApproved:  rec.NapfaApproved,
		IsEthicsCourse:   rec.EthicsCourse,
		NapfaSubjectArea: rec.NapfaSubjectArea,
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
	}
}

func toRecordDTOs(recs []ce.Record) []RecordDTO {
	dtos := make([]RecordDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toRecordDTO(rec)
	}
	return dtos
}

func toProgressDTO(prog ce.Progress) ProgressDTO {
	dto := ProgressDTO{
		Designation:    string(prog.Designation),
		State:          prog.State,
		PeriodStart:    prog.Period.Start.String(),
		PeriodEnd:      prog.Period.End.String(),
		TotalRequired:  prog.TotalRequired.Float64(),
		TotalEarned:    prog.TotalEarned.Float64(),
		TotalRemaining: prog.TotalRemaining.Float64(),
		TotalPercent:   prog.TotalPercent,
		Complete:       prog.Complete,
	}
	if prog.AdminFee != nil {
		fee := prog.AdminFee.Float64()
		dto.AdminFee = &fee
	}
	if prog.VolunteerWaiver != nil {
		waiver := prog.VolunteerWaiver.Float64()
		dto.WaiverHours = &waiver
	}
	for _, sub := range prog.Subs {
		sp := SubProgressDTO{
			Name:      sub.Name,
			Kind:      string(sub.Kind),
			Required:  sub.Required.Float64(),
			Earned:    sub.Earned.Float64(),
			Remaining: sub.Remaining.Float64(),
			Percent:   sub.Percent,
			Complete:  sub.Complete,
		}
		if sub.Window != nil {
			sp.WindowStart = sub.Window.Start.String()
			sp.WindowEnd = sub.Window.End.String()
		}
		dto.Subs = append(dto.Subs, sp)
	}
	return dto
}

func toPaceDTO(pace ce.Pace) *PaceDTO {
	return &PaceDTO{
		ElapsedDays:     pace.ElapsedDays,
		TotalDays:       pace.TotalDays,
		ElapsedFraction: pace.ElapsedFraction,
		ExpectedHours:   pace.ExpectedHours.Float64(),
		EarnedHours:     pace.EarnedHours.Float64(),
		OnTrack:         pace.OnTrack,
	}
}

func toNapfaDTO(res napfa.Result) *NapfaCycleDTO {
	return &NapfaCycleDTO{
		CycleStart:        res.Cycle.Start.String(),
		CycleEnd:          res.Cycle.End.String(),
		TotalRequired:     res.TotalRequired.Float64(),
		TotalEarned:       res.TotalEarned.Float64(),
		TotalRemaining:    res.TotalRemaining.Float64(),
		TotalPercent:      res.TotalPercent,
		ApprovedRequired:  res.ApprovedRequired.Float64(),
		ApprovedEarned:    res.ApprovedEarned.Float64(),
		ApprovedRemaining: res.ApprovedRemaining.Float64(),
		ApprovedPercent:   res.ApprovedPercent,
		EthicsCompleted:   res.EthicsCompleted,
		Complete:          res.Complete,
	}
}

func toFeedbackDTO(f ce.Feedback) FeedbackDTO {
	return FeedbackDTO{
		ID:        string(f.ID),
		Name:      f.Name,
		Email:     f.Email,
		Type:      f.Type,
		Message:   f.Message,
		UserID:    string(f.UserID),
		Read:      f.Read,
		CreatedAt: f.CreatedAt.Format(time.RFC3339),
	}
}

func toSnapshotDTO(snap ce.ComplianceSnapshot, username string) SnapshotDTO {
	return SnapshotDTO{
		UserID:        string(snap.UserID),
		Username:      username,
		Designation:   string(snap.Designation),
		PeriodStart:   snap.Period.Start.String(),
		PeriodEnd:     snap.Period.End.String(),
		TakenOn:       snap.TakenOn.String(),
		Reason:        string(snap.Reason),
		TotalRequired: snap.TotalRequired.Float64(),
		TotalEarned:   snap.TotalEarned.Float64(),
		TotalPercent:  snap.TotalPercent,
		Complete:      snap.Complete,
	}
}

func toImportResultDTO(res transfer.ImportResult, verb string) ImportResultDTO {
	return ImportResultDTO{
		Imported: res.Imported,
		Skipped:  res.Skipped,
		Message:  res.Summary(verb),
		Notes:    res.NotesDisplay(),
	}
}
