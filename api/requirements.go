/*
requirements.go - Compliance standing and what-if preview

PURPOSE:
  The dashboard's core payload: per-designation Progress (with pace
  against the linear expectation) plus the NAPFA cycle when the user
  is a member, and the preview endpoint that answers "would this course
  complete anything?" without saving it.
*/
package api

import (
	"net/http"
	"strings"

	"github.com/fairhaven/cetrack/ce"
)

// GetRequirements computes the standing of every designation the user
// holds. Designations the engine cannot resolve (unknown code, missing
// anchor) are simply absent from the list.
// GET /api/requirements
func (h *Handler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)
	now := h.now()

	progress, err := h.Calc.EvaluateUser(ctx, user.ID, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute requirements", err)
		return
	}

	resp := RequirementsResponse{
		AsOf:         now.String(),
		Designations: make([]ProgressDTO, 0, len(progress)),
	}
	for _, prog := range progress {
		dto := toProgressDTO(prog)
		dto.Pace = toPaceDTO(ce.PaceOf(prog, now))
		resp.Designations = append(resp.Designations, dto)
	}

	if user.NapfaMember {
		result, err := h.Napfa.Evaluate(ctx, user, now)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to compute NAPFA requirements", err)
			return
		}
		if result != nil {
			resp.Napfa = toNapfaDTO(*result)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// PreviewRecord evaluates a hypothetical course against one held
// designation without persisting anything.
// POST /api/requirements/preview
func (h *Handler) PreviewRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	var req PreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	code := ce.Designation(strings.TrimSpace(req.Designation))
	if code == "" {
		writeError(w, http.StatusBadRequest, "Designation is required.", ce.ErrInvalidInput)
		return
	}
	if req.DateCompleted == "" {
		writeError(w, http.StatusBadRequest, "Date completed is required.", ce.ErrInvalidInput)
		return
	}
	completed, err := ce.ParseDate(req.DateCompleted)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format.", ce.ErrInvalidInput)
		return
	}

	asns, err := h.Store.AssignmentsByUser(ctx, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load designations", err)
		return
	}
	var assignment *ce.DesignationAssignment
	for i := range asns {
		if asns[i].Code == code {
			assignment = &asns[i]
			break
		}
	}
	if assignment == nil {
		writeError(w, http.StatusNotFound, "You do not hold the "+string(code)+" designation.", ce.ErrAssignmentNotFound)
		return
	}

	result, err := h.Previews.Preview(ctx, ce.PreviewInput{
		Assignment: *assignment,
		Hypothetical: ce.Record{
			UserID:        user.ID,
			Title:         strings.TrimSpace(req.Title),
			Category:      strings.TrimSpace(req.Category),
			Hours:         ce.Hours(req.Hours),
			CompletedOn:   completed,
			NapfaApproved: req.IsNapfaApproved,
			EthicsCourse:  req.IsEthicsCourse,
		},
		Now: h.now(),
	})
	if err != nil {
		if ce.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Hours must be a positive number.", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to preview", err)
		return
	}
	if result == nil {
		writeError(w, http.StatusUnprocessableEntity, "This designation is not tracked by the requirement engine.", ce.ErrInvalidInput)
		return
	}

	writeJSON(w, http.StatusOK, PreviewResponse{
		Before:             toProgressDTO(result.Before),
		After:              toProgressDTO(result.After),
		CountsTowardPeriod: result.CountsTowardPeriod,
		NewlyComplete:      result.NewlyComplete,
		NewlyCompleteSubs:  result.NewlyCompleteSubs,
	})
}
