/*
scenarios_test.go - Tests for demo scenario loading

Each scenario must reset the database, seed accounts that can actually
log in, and leave the dashboards showing the state its description
promises.
*/
package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairhaven/cetrack/api"
)

func loadScenario(ts *testServer, t *testing.T, id string) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/scenarios/load", "", api.LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, rec.Code, "loading %s: %s", id, rec.Body.String())
}

func demoLogin(ts *testServer, t *testing.T, username string) api.AuthResponse {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Username: username, Password: "demo1234",
	})
	require.Equal(t, http.StatusOK, rec.Code, "login %s: %s", username, rec.Body.String())
	var session api.AuthResponse
	decodeAs(t, rec, &session)
	return session
}

// =============================================================================
// GATING
// =============================================================================

func TestScenarios_AbsentOutsideDevMode(t *testing.T) {
	// GIVEN a production-mode server
	ts := newTestServer(t)

	// WHEN touching the scenario routes
	list := ts.do(t, http.MethodGet, "/api/scenarios", "", nil)
	load := ts.do(t, http.MethodPost, "/api/scenarios/load", "", api.LoadScenarioRequest{ScenarioID: "new-advisor"})

	// THEN they do not exist
	assert.Equal(t, http.StatusNotFound, list.Code)
	assert.Equal(t, http.StatusNotFound, load.Code)
}

func TestScenarios_ListAndCurrent(t *testing.T) {
	// GIVEN a dev server with nothing loaded
	ts := newDevTestServer(t)

	list := ts.do(t, http.MethodGet, "/api/scenarios", "", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var scenarios []api.ScenarioDTO
	decodeAs(t, list, &scenarios)
	require.Len(t, scenarios, 3)

	current := ts.do(t, http.MethodGet, "/api/scenarios/current", "", nil)
	assert.Equal(t, "null\n", current.Body.String())

	// WHEN loading one
	loadScenario(ts, t, "napfa-member")

	// THEN it becomes the current scenario
	current = ts.do(t, http.MethodGet, "/api/scenarios/current", "", nil)
	var dto api.ScenarioDTO
	decodeAs(t, current, &dto)
	assert.Equal(t, "napfa-member", dto.ID)
}

func TestLoadScenario_UnknownID(t *testing.T) {
	ts := newDevTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/scenarios/load", "", api.LoadScenarioRequest{ScenarioID: "nope"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown scenario", errorMessage(t, rec))
}

func TestLoadScenario_ResetsExistingData(t *testing.T) {
	// GIVEN an account created before the scenario load
	ts := newDevTestServer(t)
	ts.register(t, "preexisting", "pre@example.com")

	// WHEN loading a scenario
	loadScenario(ts, t, "new-advisor")

	// THEN the old account is gone
	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Username: "preexisting", Password: "hunter2!",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// SCENARIO CONTENT
// =============================================================================

func TestScenario_NewAdvisor(t *testing.T) {
	// GIVEN the new-advisor scenario
	ts := newDevTestServer(t)
	loadScenario(ts, t, "new-advisor")

	// THEN the demo advisor logs in with a CFP and a thin history
	session := demoLogin(ts, t, "demo.advisor")

	list := ts.do(t, http.MethodGet, "/api/records", session.Token, nil)
	var records api.RecordsResponse
	decodeAs(t, list, &records)
	assert.Len(t, records.Records, 2)
	assert.InDelta(t, 7, records.TotalHours, 0.001)

	reqs := ts.do(t, http.MethodGet, "/api/requirements", session.Token, nil)
	var standing api.RequirementsResponse
	decodeAs(t, reqs, &standing)
	require.Len(t, standing.Designations, 1)
	assert.Equal(t, "CFP", standing.Designations[0].Designation)
	assert.False(t, standing.Designations[0].Complete)

	// And the demo admin can see the seeded snapshot
	admin := demoLogin(ts, t, "demo.admin")
	snaps := ts.do(t, http.MethodGet, "/api/admin/snapshots", admin.Token, nil)
	var overview []api.SnapshotDTO
	decodeAs(t, snaps, &overview)
	require.NotEmpty(t, overview)
	assert.Equal(t, "demo.advisor", overview[0].Username)
}

func TestScenario_MultiDesignation(t *testing.T) {
	// GIVEN the multi-designation scenario
	ts := newDevTestServer(t)
	loadScenario(ts, t, "multi-designation")

	// THEN the demo account holds three credentials with mixed history
	session := demoLogin(ts, t, "demo.multi")

	profile := ts.do(t, http.MethodGet, "/api/profile", session.Token, nil)
	var prof api.ProfileResponse
	decodeAs(t, profile, &prof)
	assert.Equal(t, 3, prof.DesignationCount)

	reqs := ts.do(t, http.MethodGet, "/api/requirements", session.Token, nil)
	var standing api.RequirementsResponse
	decodeAs(t, reqs, &standing)
	codes := map[string]bool{}
	for _, d := range standing.Designations {
		codes[d.Designation] = true
	}
	assert.True(t, codes["CFP"])
	assert.True(t, codes["CPA"])
	assert.True(t, codes["EA"])

	list := ts.do(t, http.MethodGet, "/api/records", session.Token, nil)
	var records api.RecordsResponse
	decodeAs(t, list, &records)
	assert.GreaterOrEqual(t, len(records.Records), 6)
	assert.GreaterOrEqual(t, len(records.Categories), 4)
}

func TestScenario_NapfaMember(t *testing.T) {
	// GIVEN the napfa-member scenario
	ts := newDevTestServer(t)
	loadScenario(ts, t, "napfa-member")

	// THEN the member dashboard shows the cycle with approved hours
	session := demoLogin(ts, t, "demo.napfa")
	assert.True(t, session.User.NapfaMember)

	reqs := ts.do(t, http.MethodGet, "/api/requirements", session.Token, nil)
	var standing api.RequirementsResponse
	decodeAs(t, reqs, &standing)
	require.NotNil(t, standing.Napfa)
	assert.True(t, standing.Napfa.EthicsCompleted)
	assert.Greater(t, standing.Napfa.ApprovedEarned, 0.0)
	assert.Greater(t, standing.Napfa.TotalEarned, standing.Napfa.ApprovedEarned,
		"unapproved hours count toward the total only")
}

func TestAllScenariosLoadWithoutError(t *testing.T) {
	for _, s := range []string{"new-advisor", "multi-designation", "napfa-member"} {
		t.Run(s, func(t *testing.T) {
			ts := newDevTestServer(t)
			loadScenario(ts, t, s)

			// Every scenario seeds a working admin account
			admin := demoLogin(ts, t, "demo.admin")
			assert.True(t, admin.User.IsAdmin)
		})
	}
}
