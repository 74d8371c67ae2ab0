package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairhaven/cetrack/api"
)

func submitFeedback(ts *testServer, t *testing.T, token, name string) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/feedback", token, api.FeedbackRequest{
		Name: name, Email: name + "@example.com", Type: "bug",
		Message: "Something looks off on the dashboard.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmitFeedback_AnonymousAndLinked(t *testing.T) {
	// GIVEN one anonymous and one signed-in submission
	ts := newTestServer(t)
	session := ts.register(t, "dana", "dana@example.com")

	submitFeedback(ts, t, "", "visitor")
	submitFeedback(ts, t, session.Token, "dana")

	// THEN only the signed-in entry is linked to the account
	entries, err := ts.store.ListFeedback(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	linked := 0
	for _, f := range entries {
		if f.UserID != "" {
			linked++
		}
	}
	assert.Equal(t, 1, linked)
}

func TestSubmitFeedback_Validation(t *testing.T) {
	ts := newTestServer(t)

	// Everything missing
	rec := ts.do(t, http.MethodPost, "/api/feedback", "", api.FeedbackRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body validationBody
	decodeAs(t, rec, &body)
	assert.Contains(t, body.Details, "Name is required.")
	assert.Contains(t, body.Details, "Please select a feedback type.")
	assert.Contains(t, body.Details, "Message is required.")

	// Too-short message
	rec = ts.do(t, http.MethodPost, "/api/feedback", "", api.FeedbackRequest{
		Name: "dana", Email: "dana@example.com", Type: "idea", Message: "meh",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide more detail in your message (at least 10 characters).", errorMessage(t, rec))
}

// =============================================================================
// ADMIN INBOX
// =============================================================================

func TestAdminFeedback_FilterToggleDelete(t *testing.T) {
	// GIVEN two entries and an admin
	ts := newTestServer(t)
	admin := ts.register(t, "root", "root@example.com")
	ts.promote(t, "root")
	submitFeedback(ts, t, "", "first")
	submitFeedback(ts, t, "", "second")

	// WHEN listing the inbox
	rec := ts.do(t, http.MethodGet, "/api/admin/feedback", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox api.FeedbackListResponse
	decodeAs(t, rec, &inbox)
	require.Len(t, inbox.Feedback, 2)
	assert.Equal(t, 2, inbox.Total)
	assert.Equal(t, 2, inbox.Unread)

	// WHEN marking one read
	id := inbox.Feedback[0].ID
	toggle := ts.do(t, http.MethodPost, "/api/admin/feedback/"+id+"/toggle-read", admin.Token, nil)
	require.Equal(t, http.StatusOK, toggle.Code)
	assert.Contains(t, toggle.Body.String(), `"read":true`)

	// THEN the unread filter hides it and the counters move
	rec = ts.do(t, http.MethodGet, "/api/admin/feedback?filter=unread", admin.Token, nil)
	decodeAs(t, rec, &inbox)
	assert.Len(t, inbox.Feedback, 1)
	assert.Equal(t, 2, inbox.Total)
	assert.Equal(t, 1, inbox.Unread)

	// WHEN toggling again it flips back
	toggle = ts.do(t, http.MethodPost, "/api/admin/feedback/"+id+"/toggle-read", admin.Token, nil)
	assert.Contains(t, toggle.Body.String(), `"read":false`)

	// WHEN deleting an entry
	del := ts.do(t, http.MethodDelete, "/api/admin/feedback/"+id, admin.Token, nil)
	require.Equal(t, http.StatusOK, del.Code)
	rec = ts.do(t, http.MethodGet, "/api/admin/feedback", admin.Token, nil)
	decodeAs(t, rec, &inbox)
	assert.Equal(t, 1, inbox.Total)
}

func TestAdminToggleFeedback_UnknownID(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.register(t, "root", "root@example.com")
	ts.promote(t, "root")

	rec := ts.do(t, http.MethodPost, "/api/admin/feedback/nope/toggle-read", admin.Token, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Feedback not found", errorMessage(t, rec))
}
