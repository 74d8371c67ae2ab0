/*
feedback.go - Feedback submission and the admin inbox

PURPOSE:
  Anyone can submit feedback, signed in or not; a signed-in submitter
  gets linked to their account. Admins read the inbox with optional
  read/unread filtering, flip the read flag, and delete entries.
*/
package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairhaven/cetrack/ce"
)

// SubmitFeedback records a feedback entry and optionally notifies the
// operators by email.
// POST /api/feedback
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Type = strings.TrimSpace(req.Type)
	req.Message = strings.TrimSpace(req.Message)

	var problems []string
	if req.Name == "" {
		problems = append(problems, "Name is required.")
	}
	if req.Email == "" {
		problems = append(problems, "Email is required.")
	} else if !validEmail(req.Email) {
		problems = append(problems, "Please enter a valid email address.")
	}
	if req.Type == "" {
		problems = append(problems, "Please select a feedback type.")
	}
	if req.Message == "" {
		problems = append(problems, "Message is required.")
	} else if len(req.Message) < 10 {
		problems = append(problems, "Please provide more detail in your message (at least 10 characters).")
	}
	if len(problems) > 0 {
		writeValidation(w, problems)
		return
	}

	fb := ce.Feedback{
		Name:    req.Name,
		Email:   req.Email,
		Type:    req.Type,
		Message: req.Message,
	}
	if user, ok := userFrom(ctx); ok {
		fb.UserID = user.ID
	}

	if err := h.Store.CreateFeedback(ctx, &fb); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save feedback", err)
		return
	}

	if err := h.Mail.SendFeedbackNotice(ctx, fb.Name, fb.Email, fb.Type, fb.Message); err != nil {
		h.Log.Warn().Err(err).Msg("feedback notice failed")
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Thank you for your feedback! We appreciate you taking the time to help us improve.",
	})
}

// =============================================================================
// ADMIN INBOX
// =============================================================================

// AdminListFeedback returns the inbox, optionally filtered.
// GET /api/admin/feedback?filter=read|unread
func (h *Handler) AdminListFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var read *bool
	switch r.URL.Query().Get("filter") {
	case "read":
		t := true
		read = &t
	case "unread":
		f := false
		read = &f
	}

	entries, err := h.Store.ListFeedback(ctx, read)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load feedback", err)
		return
	}
	total, unread, err := h.Store.CountFeedback(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count feedback", err)
		return
	}

	dtos := make([]FeedbackDTO, 0, len(entries))
	for _, f := range entries {
		dtos = append(dtos, toFeedbackDTO(f))
	}
	writeJSON(w, http.StatusOK, FeedbackListResponse{Feedback: dtos, Total: total, Unread: unread})
}

// AdminToggleFeedbackRead flips one entry's read flag.
// POST /api/admin/feedback/{id}/toggle-read
func (h *Handler) AdminToggleFeedbackRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := ce.FeedbackID(chi.URLParam(r, "id"))

	// Fetch current state via the unfiltered list; the inbox is small.
	entries, err := h.Store.ListFeedback(ctx, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load feedback", err)
		return
	}
	for _, f := range entries {
		if f.ID == id {
			if err := h.Store.SetFeedbackRead(ctx, id, !f.Read); err != nil {
				writeDomainError(w, "Failed to update feedback", err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"read": !f.Read})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Feedback not found", ce.ErrFeedbackNotFound)
}

// AdminDeleteFeedback removes one entry.
// DELETE /api/admin/feedback/{id}
func (h *Handler) AdminDeleteFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := ce.FeedbackID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteFeedback(ctx, id); err != nil {
		writeDomainError(w, "Failed to delete feedback", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Feedback deleted."})
}
