package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairhaven/cetrack/api"
)

// =============================================================================
// REQUIREMENTS DASHBOARD
// =============================================================================

func TestGetRequirements_CFPStanding(t *testing.T) {
	// GIVEN a June-birthday CFP with 6 hours logged, 2 of them ethics
	ts := newTestServer(t)
	session := ts.register(t, "dana", "dana@example.com",
		api.DesignationInput{Code: "CFP", BirthMonth: 6},
	)
	ts.createRecord(t, session.Token, api.SaveRecordRequest{
		Title: "Ethics Refresher", Category: "Ethics", Hours: 2, DateCompleted: "2025-06-10",
	})
	ts.createRecord(t, session.Token, api.SaveRecordRequest{
		Title: "Tax Update", Category: "Tax", Hours: 4, DateCompleted: "2025-06-12",
	})

	// WHEN loading the requirements dashboard on 2025-06-15
	rec := ts.do(t, http.MethodGet, "/api/requirements", session.Token, nil)

	// THEN the CFP panel shows the birth-month period and live totals
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp api.RequirementsResponse
	decodeAs(t, rec, &resp)
	assert.Equal(t, "2025-06-15", resp.AsOf)
	assert.Nil(t, resp.Napfa, "non-members get no NAPFA panel")
	require.Len(t, resp.Designations, 1)

	cfp := resp.Designations[0]
	assert.Equal(t, "CFP", cfp.Designation)
	assert.Equal(t, "2025-06-01", cfp.PeriodStart)
	assert.Equal(t, "2027-05-31", cfp.PeriodEnd)
	assert.InDelta(t, 30, cfp.TotalRequired, 0.001)
	assert.InDelta(t, 6, cfp.TotalEarned, 0.001)
	assert.InDelta(t, 24, cfp.TotalRemaining, 0.001)
	assert.False(t, cfp.Complete)

	// The ethics minimum is already satisfied
	require.NotEmpty(t, cfp.Subs)
	var ethics *api.SubProgressDTO
	for i := range cfp.Subs {
		if cfp.Subs[i].Name == "ethics" {
			ethics = &cfp.Subs[i]
		}
	}
	require.NotNil(t, ethics)
	assert.InDelta(t, 2, ethics.Earned, 0.001)
	assert.True(t, ethics.Complete)

	// Pace reads 6 hours against a two-week-old period
	require.NotNil(t, cfp.Pace)
	assert.True(t, cfp.Pace.OnTrack)
	assert.InDelta(t, 6, cfp.Pace.EarnedHours, 0.001)
	assert.Greater(t, cfp.Pace.TotalDays, 700)
}

func TestGetRequirements_NapfaPanelForMembers(t *testing.T) {
	// GIVEN a member who joined before the current cycle
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Username: "dana", Email: "dana@example.com",
		Password: "hunter2!", ConfirmPassword: "hunter2!", DisclaimerAck: true,
		NapfaMember: true, NapfaJoinDate: "2023-01-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var session api.AuthResponse
	decodeAs(t, rec, &session)

	ts.createRecord(t, session.Token, api.SaveRecordRequest{
		Title: "Fiduciary Ethics", Category: "Ethics", Hours: 3, DateCompleted: "2025-03-01",
		IsNapfaApproved: true, IsEthicsCourse: true,
	})
	ts.createRecord(t, session.Token, api.SaveRecordRequest{
		Title: "Tax Planning", Category: "Tax", Hours: 4, DateCompleted: "2024-06-01",
	})

	// WHEN loading requirements inside the 2024-2025 cycle
	resp := ts.do(t, http.MethodGet, "/api/requirements", session.Token, nil)

	// THEN the member cycle carries the full 60/30 tier
	require.Equal(t, http.StatusOK, resp.Code)
	var body api.RequirementsResponse
	decodeAs(t, resp, &body)
	require.NotNil(t, body.Napfa)
	assert.Equal(t, "2024-01-01", body.Napfa.CycleStart)
	assert.Equal(t, "2025-12-31", body.Napfa.CycleEnd)
	assert.InDelta(t, 60, body.Napfa.TotalRequired, 0.001)
	assert.InDelta(t, 7, body.Napfa.TotalEarned, 0.001)
	assert.InDelta(t, 30, body.Napfa.ApprovedRequired, 0.001)
	assert.InDelta(t, 3, body.Napfa.ApprovedEarned, 0.001)
	assert.True(t, body.Napfa.EthicsCompleted)
	assert.False(t, body.Napfa.Complete)
}

// =============================================================================
// WHAT-IF PREVIEW
// =============================================================================

func TestPreviewRecord_ShowsBeforeAndAfter(t *testing.T) {
	// GIVEN a CFP with 4 hours logged
	ts := newTestServer(t)
	session := ts.register(t, "dana", "dana@example.com",
		api.DesignationInput{Code: "CFP", BirthMonth: 6},
	)
	ts.createRecord(t, session.Token, api.SaveRecordRequest{
		Title: "Tax Update", Hours: 4, DateCompleted: "2025-06-10",
	})

	// WHEN previewing a 2-hour course inside the period
	rec := ts.do(t, http.MethodPost, "/api/requirements/preview", session.Token, api.PreviewRequest{
		Designation: "CFP", Title: "Estate Planning", Hours: 2, DateCompleted: "2025-07-01",
	})

	// THEN the totals move by exactly those hours
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var preview api.PreviewResponse
	decodeAs(t, rec, &preview)
	assert.InDelta(t, 4, preview.Before.TotalEarned, 0.001)
	assert.InDelta(t, 6, preview.After.TotalEarned, 0.001)
	assert.True(t, preview.CountsTowardPeriod)
	assert.False(t, preview.NewlyComplete)
}

func TestPreviewRecord_OutsidePeriodDoesNotCount(t *testing.T) {
	// GIVEN a CFP whose period starts 2025-06-01
	ts := newTestServer(t)
	session := ts.register(t, "dana", "dana@example.com",
		api.DesignationInput{Code: "CFP", BirthMonth: 6},
	)

	// WHEN previewing a course dated before the period opened
	rec := ts.do(t, http.MethodPost, "/api/requirements/preview", session.Token, api.PreviewRequest{
		Designation: "CFP", Title: "Old course", Hours: 5, DateCompleted: "2025-05-01",
	})

	// THEN nothing moves
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var preview api.PreviewResponse
	decodeAs(t, rec, &preview)
	assert.False(t, preview.CountsTowardPeriod)
	assert.InDelta(t, preview.Before.TotalEarned, preview.After.TotalEarned, 0.001)
}

func TestPreviewRecord_ErrorPaths(t *testing.T) {
	ts := newTestServer(t)
	session := ts.register(t, "dana", "dana@example.com",
		api.DesignationInput{Code: "CFP", BirthMonth: 6},
		api.DesignationInput{Code: "CLE"},
	)

	// Designation the user doesn't hold
	rec := ts.do(t, http.MethodPost, "/api/requirements/preview", session.Token, api.PreviewRequest{
		Designation: "EA", Title: "X", Hours: 1, DateCompleted: "2025-07-01",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "You do not hold the EA designation.", errorMessage(t, rec))

	// Non-positive hours
	rec = ts.do(t, http.MethodPost, "/api/requirements/preview", session.Token, api.PreviewRequest{
		Designation: "CFP", Title: "X", Hours: 0, DateCompleted: "2025-07-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Hours must be a positive number.", errorMessage(t, rec))

	// Held but untracked code
	rec = ts.do(t, http.MethodPost, "/api/requirements/preview", session.Token, api.PreviewRequest{
		Designation: "CLE", Title: "X", Hours: 1, DateCompleted: "2025-07-01",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "This designation is not tracked by the requirement engine.", errorMessage(t, rec))
}

// =============================================================================
// ANALYTICS
// =============================================================================

func TestGetAnalytics(t *testing.T) {
	// GIVEN records across categories, providers, and months
	ts := newTestServer(t)
	session := ts.register(t, "dana", "dana@example.com")
	ts.createRecord(t, session.Token, api.SaveRecordRequest{
		Title: "Ethics Refresher", Category: "Ethics", Provider: "Kaplan",
		Hours: 2, DateCompleted: "2025-03-10",
	})
	ts.createRecord(t, session.Token, api.SaveRecordRequest{
		Title: "Tax Update", Category: "Tax", Provider: "NATP",
		Hours: 6, DateCompleted: "2025-04-01",
	})
	ts.createRecord(t, session.Token, api.SaveRecordRequest{
		Title: "More Tax", Category: "Tax", Provider: "NATP",
		Hours: 4, DateCompleted: "2025-04-20",
	})

	// WHEN loading analytics
	rec := ts.do(t, http.MethodGet, "/api/analytics", session.Token, nil)

	// THEN the rollups reflect the history
	require.Equal(t, http.StatusOK, rec.Code)
	var stats api.AnalyticsResponse
	decodeAs(t, rec, &stats)
	assert.Equal(t, 3, stats.TotalRecords)
	assert.InDelta(t, 12, stats.TotalHours, 0.001)
	assert.InDelta(t, 4, stats.AverageHours, 0.001)
	assert.Equal(t, 2, stats.CategoryCount)

	require.NotEmpty(t, stats.Categories)
	assert.Equal(t, "Tax", stats.Categories[0].Category, "heaviest category leads")
	assert.InDelta(t, 10, stats.Categories[0].Hours, 0.001)

	require.NotEmpty(t, stats.Providers)
	assert.Equal(t, "NATP", stats.Providers[0].Provider)
	assert.Equal(t, 2, stats.Providers[0].Records)

	var april api.MonthlyHoursDTO
	for _, m := range stats.Monthly {
		if m.Label == "Apr 2025" {
			april = m
		}
	}
	assert.InDelta(t, 10, april.Hours, 0.001)
}
