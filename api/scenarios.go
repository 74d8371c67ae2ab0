/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates users, designation
	assignments, and CE records that demonstrate specific features.

AVAILABLE SCENARIOS:

	new-advisor:       CFP holder with a thin, realistic first-year history
	multi-designation: CFP + CPA + EA with two years of mixed records
	napfa-member:      NAPFA member with approved and ethics-flagged courses

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create demo users (bcrypt-hashed passwords, password "demo1234")
 3. Create designation assignments with their anchor data
 4. Add CE records dated relative to "now" so progress bars look alive
 5. Capture compliance snapshots so the admin overview has data

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "multi-designation"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. The routes only exist when dev mode is
	enabled in configuration.

SEE ALSO:
  - server.go: The dev-gated /api/scenarios routes
*/
package api

import (
	"context"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/fairhaven/cetrack/ce"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "new-advisor",
		Name:        "New Advisor",
		Description: "CFP holder early in the reporting period with a sparse history",
	},
	{
		ID:          "multi-designation",
		Name:        "Multi-Designation",
		Description: "CFP + CPA + EA with two years of mixed CE records",
	},
	{
		ID:          "napfa-member",
		Name:        "NAPFA Member",
		Description: "NAPFA member mixing approved, ethics, and unapproved courses",
	},
}

// demoPassword is shared by every scenario account.
const demoPassword = "demo1234"

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          current,
		Name:        current,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()

	h.mu.Lock()
	defer h.mu.Unlock()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "new-advisor":
		err = h.loadNewAdvisorScenario(ctx)
	case "multi-designation":
		err = h.loadMultiDesignationScenario(ctx)
	case "napfa-member":
		err = h.loadNapfaMemberScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", ce.ErrInvalidInput)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.Log.Info().Str("scenario", req.ScenarioID).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadNewAdvisorScenario(ctx context.Context) error {
	if err := h.seedDemoAdmin(ctx); err != nil {
		return err
	}

	now := h.now()
	user, err := h.seedDemoUser(ctx, "demo.advisor", "advisor@example.com", false)
	if err != nil {
		return err
	}

	// CFP only, period anchored on a June birth month
	if err := h.Store.CreateAssignment(ctx, &ce.DesignationAssignment{
		UserID:     user.ID,
		Code:       "CFP",
		BirthMonth: 6,
	}); err != nil {
		return err
	}

	// A thin first-year history: one planning course, one ethics course
	records := []ce.Record{
		{
			Title:       "Retirement Income Distribution Strategies",
			Provider:    "Kaplan Financial",
			Hours:       ce.Hours(5),
			CompletedOn: now.AddMonths(-3),
			Category:    "Retirement Planning",
			Description: "Sequence-of-returns risk and withdrawal frameworks",
		},
		{
			Title:       "CFP Board Ethics: Duties to Clients",
			Provider:    "CFP Board",
			Hours:       ce.Hours(2),
			CompletedOn: now.AddMonths(-1),
			Category:    "Ethics",
		},
	}
	for i := range records {
		records[i].UserID = user.ID
		if err := h.Store.CreateRecord(ctx, &records[i]); err != nil {
			return err
		}
	}

	_, err = h.Snaps.CaptureUser(ctx, user.ID, now, ce.SnapshotManual)
	return err
}

func (h *Handler) loadMultiDesignationScenario(ctx context.Context) error {
	if err := h.seedDemoAdmin(ctx); err != nil {
		return err
	}

	now := h.now()
	user, err := h.seedDemoUser(ctx, "demo.multi", "multi@example.com", false)
	if err != nil {
		return err
	}

	assignments := []ce.DesignationAssignment{
		{UserID: user.ID, Code: "CFP", BirthMonth: 3},
		{UserID: user.ID, Code: "CPA", State: "TX"},
		{UserID: user.ID, Code: "EA"},
	}
	for i := range assignments {
		if err := h.Store.CreateAssignment(ctx, &assignments[i]); err != nil {
			return err
		}
	}

	// Two years of mixed history across categories and providers
	records := []ce.Record{
		{
			Title:       "Annual Federal Tax Refresher",
			Provider:    "NATP",
			Hours:       ce.Hours(6),
			CompletedOn: now.AddMonths(-22),
			Category:    "Federal Tax",
		},
		{
			Title:       "Circular 230 Ethics for Practitioners",
			Provider:    "NATP",
			Hours:       ce.Hours(2),
			CompletedOn: now.AddMonths(-20),
			Category:    "Ethics",
		},
		{
			Title:       "Estate Planning After SECURE 2.0",
			Provider:    "Surgent CPE",
			Hours:       ce.Hours(8),
			CompletedOn: now.AddMonths(-16),
			Category:    "Estate Planning",
		},
		{
			Title:       "Texas CPA Professional Standards Update",
			Provider:    "TXCPA",
			Hours:       ce.Hours(4),
			CompletedOn: now.AddMonths(-11),
			Category:    "Accounting",
		},
		{
			Title:       "Partnership Taxation Deep Dive",
			Provider:    "Surgent CPE",
			Hours:       ce.Hours(10),
			CompletedOn: now.AddMonths(-9),
			Category:    "Federal Tax",
			Description: "704(b) allocations, basis adjustments, and K-2/K-3 reporting",
		},
		{
			Title:       "Behavioral Finance in Client Conversations",
			Provider:    "Kitces.com",
			Hours:       ce.Hours(3),
			CompletedOn: now.AddMonths(-6),
			Category:    "Financial Planning",
		},
		{
			Title:       "Ethics CE: Conflicts of Interest",
			Provider:    "CFP Board",
			Hours:       ce.Hours(2),
			CompletedOn: now.AddMonths(-4),
			Category:    "Ethics",
		},
		{
			Title:       "Medicare and Health Care Planning",
			Provider:    "Kaplan Financial",
			Hours:       ce.Hours(5),
			CompletedOn: now.AddMonths(-2),
			Category:    "Insurance",
		},
	}
	for i := range records {
		records[i].UserID = user.ID
		if err := h.Store.CreateRecord(ctx, &records[i]); err != nil {
			return err
		}
	}

	_, err = h.Snaps.CaptureUser(ctx, user.ID, now, ce.SnapshotManual)
	return err
}

func (h *Handler) loadNapfaMemberScenario(ctx context.Context) error {
	if err := h.seedDemoAdmin(ctx); err != nil {
		return err
	}

	now := h.now()
	user, err := h.seedDemoUser(ctx, "demo.napfa", "napfa@example.com", false)
	if err != nil {
		return err
	}

	// Member since well before the current cycle, so the full 60-hour
	// tier applies
	joined := now.AddYears(-3)
	user.NapfaMember = true
	user.NapfaJoinDate = &joined
	if err := h.Store.UpdateUser(ctx, user); err != nil {
		return err
	}

	// Also a CFP so the dashboard shows both tracks side by side
	if err := h.Store.CreateAssignment(ctx, &ce.DesignationAssignment{
		UserID:     user.ID,
		Code:       "CFP",
		BirthMonth: 9,
	}); err != nil {
		return err
	}

	records := []ce.Record{
		{
			Title:            "Comprehensive Financial Planning Process",
			Provider:         "NAPFA",
			Hours:            ce.Hours(12),
			CompletedOn:      now.AddMonths(-10),
			Category:         "Financial Planning",
			NapfaApproved:    true,
			NapfaSubjectArea: "Financial Planning Process",
		},
		{
			Title:            "Fiduciary Ethics for Fee-Only Advisors",
			Provider:         "NAPFA",
			Hours:            ce.Hours(3),
			CompletedOn:      now.AddMonths(-8),
			Category:         "Ethics",
			NapfaApproved:    true,
			EthicsCourse:     true,
			NapfaSubjectArea: "Ethics",
		},
		{
			Title:            "Investment Policy Statements in Practice",
			Provider:         "NAPFA",
			Hours:            ce.Hours(8),
			CompletedOn:      now.AddMonths(-5),
			Category:         "Investments",
			NapfaApproved:    true,
			NapfaSubjectArea: "Investments",
		},
		{
			// Unapproved hours count toward the total but not the
			// approved minimum
			Title:       "State Insurance CE Bundle",
			Provider:    "WebCE",
			Hours:       ce.Hours(6),
			CompletedOn: now.AddMonths(-2),
			Category:    "Insurance",
		},
	}
	for i := range records {
		records[i].UserID = user.ID
		if err := h.Store.CreateRecord(ctx, &records[i]); err != nil {
			return err
		}
	}

	_, err = h.Snaps.CaptureUser(ctx, user.ID, now, ce.SnapshotManual)
	return err
}

// =============================================================================
// SEED HELPERS
// =============================================================================

func (h *Handler) seedDemoUser(ctx context.Context, username, email string, admin bool) (ce.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return ce.User{}, err
	}
	user := ce.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      admin,
	}
	if err := h.Store.CreateUser(ctx, &user); err != nil {
		return ce.User{}, err
	}
	return user, nil
}

// seedDemoAdmin creates the shared admin login so the operator pages
// are demoable in every scenario.
func (h *Handler) seedDemoAdmin(ctx context.Context) error {
	_, err := h.seedDemoUser(ctx, "demo.admin", "admin@example.com", true)
	return err
}
