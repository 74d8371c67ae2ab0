package ce

import "sort"

// =============================================================================
// ANALYTICS - Descriptive statistics over a user's full record history
// =============================================================================

// AnalyticsReport summarizes a user's CE history for charts. Unlike
// Progress this ignores designation periods entirely: every record the
// user ever logged participates.
type AnalyticsReport struct {
	TotalRecords  int
	TotalHours    Amount
	AverageHours  Amount
	CategoryCount int

	// Categories sorted by hours descending. Records without a category
	// land in "Uncategorized".
	Categories []CategoryHours

	// Monthly covers the last 12 calendar months ending with the month
	// containing now, oldest first, empty months zero-filled.
	Monthly []MonthlyHours

	// Yearly in ascending year order, only years with records.
	Yearly []YearlyHours

	// Providers holds the top 10 by hours descending. Records without a
	// provider land in "Unknown".
	Providers []ProviderHours
}

type CategoryHours struct {
	Category string
	Hours    Amount
	Records  int
}

type MonthlyHours struct {
	Label string // "Jan 2025"
	Year  int
	Month int
	Hours Amount
}

type YearlyHours struct {
	Year  int
	Hours Amount
}

type ProviderHours struct {
	Provider string
	Hours    Amount
	Records  int
}

// Analyze computes the report from a full record history. Pure; now only
// anchors the 12-month window.
func Analyze(records []Record, now TimePoint) AnalyticsReport {
	report := AnalyticsReport{
		TotalRecords: len(records),
		TotalHours:   Hours(0),
		AverageHours: Hours(0),
		Monthly:      monthlyBuckets(records, now),
	}

	type catAgg struct {
		hours Amount
		count int
	}
	cats := map[string]*catAgg{}
	provs := map[string]*catAgg{}
	years := map[int]Amount{}

	for _, rec := range records {
		report.TotalHours = report.TotalHours.Add(rec.Hours)

		cat := rec.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		if cats[cat] == nil {
			cats[cat] = &catAgg{hours: Hours(0)}
		}
		cats[cat].hours = cats[cat].hours.Add(rec.Hours)
		cats[cat].count++

		prov := rec.Provider
		if prov == "" {
			prov = "Unknown"
		}
		if provs[prov] == nil {
			provs[prov] = &catAgg{hours: Hours(0)}
		}
		provs[prov].hours = provs[prov].hours.Add(rec.Hours)
		provs[prov].count++

		y := rec.CompletedOn.Year()
		if _, ok := years[y]; !ok {
			years[y] = Hours(0)
		}
		years[y] = years[y].Add(rec.Hours)
	}

	if len(records) > 0 {
		report.AverageHours = NewAmount(report.TotalHours.Float64()/float64(len(records)), UnitHours)
	}
	report.CategoryCount = len(cats)

	for name, agg := range cats {
		report.Categories = append(report.Categories, CategoryHours{Category: name, Hours: agg.hours, Records: agg.count})
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		if !report.Categories[i].Hours.Value.Equal(report.Categories[j].Hours.Value) {
			return report.Categories[i].Hours.GreaterThan(report.Categories[j].Hours)
		}
		return report.Categories[i].Category < report.Categories[j].Category
	})

	for name, agg := range provs {
		report.Providers = append(report.Providers, ProviderHours{Provider: name, Hours: agg.hours, Records: agg.count})
	}
	sort.Slice(report.Providers, func(i, j int) bool {
		if !report.Providers[i].Hours.Value.Equal(report.Providers[j].Hours.Value) {
			return report.Providers[i].Hours.GreaterThan(report.Providers[j].Hours)
		}
		return report.Providers[i].Provider < report.Providers[j].Provider
	})
	if len(report.Providers) > 10 {
		report.Providers = report.Providers[:10]
	}

	for y, hours := range years {
		report.Yearly = append(report.Yearly, YearlyHours{Year: y, Hours: hours})
	}
	sort.Slice(report.Yearly, func(i, j int) bool { return report.Yearly[i].Year < report.Yearly[j].Year })

	return report
}

// monthlyBuckets walks real calendar months backwards from now, so a
// Jan 31 anchor still yields Feb..Jan buckets rather than drifting the
// way a fixed 30-day stride would.
func monthlyBuckets(records []Record, now TimePoint) []MonthlyHours {
	start := StartOfMonth(now.Year(), now.Month()).AddMonths(-11)

	buckets := make([]MonthlyHours, 12)
	index := map[int]int{} // year*100+month -> bucket position
	for i := 0; i < 12; i++ {
		m := start.AddMonths(i)
		buckets[i] = MonthlyHours{
			Label: m.Time.Format("Jan 2006"),
			Year:  m.Year(),
			Month: int(m.Month()),
			Hours: Hours(0),
		}
		index[m.Year()*100+int(m.Month())] = i
	}

	for _, rec := range records {
		key := rec.CompletedOn.Year()*100 + int(rec.CompletedOn.Month())
		if i, ok := index[key]; ok {
			buckets[i].Hours = buckets[i].Hours.Add(rec.Hours)
		}
	}
	return buckets
}
