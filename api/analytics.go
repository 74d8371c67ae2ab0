// analytics.go - Learning-history charts for the analytics page.
package api

import (
	"net/http"

	"github.com/fairhaven/cetrack/ce"
)

// GetAnalytics summarizes the user's full CE history: category and
// provider breakdowns, the last 12 months, and per-year totals.
// GET /api/analytics
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	records, err := h.Store.RecordsByUser(ctx, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	report := ce.Analyze(records, h.now())

	resp := AnalyticsResponse{
		TotalRecords:  report.TotalRecords,
		TotalHours:    report.TotalHours.Float64(),
		AverageHours:  report.AverageHours.Float64(),
		CategoryCount: report.CategoryCount,
		Categories:    make([]CategoryHoursDTO, 0, len(report.Categories)),
		Monthly:       make([]MonthlyHoursDTO, 0, len(report.Monthly)),
		Yearly:        make([]YearlyHoursDTO, 0, len(report.Yearly)),
		Providers:     make([]ProviderHoursDTO, 0, len(report.Providers)),
	}
	for _, c := range report.Categories {
		resp.Categories = append(resp.Categories, CategoryHoursDTO{
			Category: c.Category,
			Hours:    c.Hours.Float64(),
			Records:  c.Records,
		})
	}
	for _, m := range report.Monthly {
		resp.Monthly = append(resp.Monthly, MonthlyHoursDTO{
			Label: m.Label,
			Year:  m.Year,
			Month: m.Month,
			Hours: m.Hours.Float64(),
		})
	}
	for _, y := range report.Yearly {
		resp.Yearly = append(resp.Yearly, YearlyHoursDTO{
			Year:  y.Year,
			Hours: y.Hours.Float64(),
		})
	}
	for _, p := range report.Providers {
		resp.Providers = append(resp.Providers, ProviderHoursDTO{
			Provider: p.Provider,
			Hours:    p.Hours.Float64(),
			Records:  p.Records,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
