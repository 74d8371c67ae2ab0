package transfer_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairhaven/cetrack/ce"
	"github.com/fairhaven/cetrack/store/memory"
	"github.com/fairhaven/cetrack/transfer"
)

func seedImportUser(t *testing.T, store *memory.Store) ce.UserID {
	t.Helper()
	user := &ce.User{Username: "dana", Email: "dana@example.com", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user.ID
}

func TestCSVImportAliasedHeadersAndDateFormats(t *testing.T) {
	// GIVEN a CSV using alternate column names and three date styles
	store := memory.New()
	userID := seedImportUser(t, store)
	importer := &transfer.CSVImporter{Records: store}

	csvText := strings.Join([]string{
		"Course_Title,CE Hours,Completion Date,Sponsor,Type,Notes",
		"Estate Planning,2.5,2025-03-10,Kaplan,Estate,half day",
		"Tax Update,1,03/15/2025,NATP,Tax,",
		"Retirement Income,3,25/12/2024,AICPA,Retirement,",
	}, "\n")

	// WHEN importing
	now := ce.NewTimePoint(2025, time.June, 30)
	result, err := importer.Import(context.Background(), userID, strings.NewReader(csvText), now)
	require.NoError(t, err)

	// THEN every row lands with its date resolved
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Notes)

	records, err := store.RecordsByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, records, 3)

	byTitle := make(map[string]ce.Record)
	for _, rec := range records {
		byTitle[rec.Title] = rec
	}
	assert.Equal(t, "2025-03-10", byTitle["Estate Planning"].CompletedOn.String())
	assert.Equal(t, "Kaplan", byTitle["Estate Planning"].Provider)
	assert.Equal(t, "Estate", byTitle["Estate Planning"].Category)
	assert.Equal(t, "half day", byTitle["Estate Planning"].Description)
	assert.Equal(t, "2025-03-15", byTitle["Tax Update"].CompletedOn.String())
	assert.Equal(t, "2024-12-25", byTitle["Retirement Income"].CompletedOn.String(), "day-first date should parse once US forms fail")
}

func TestCSVImportSkipsBadRowsWithNotes(t *testing.T) {
	// GIVEN a store that already holds one record, and a messy CSV
	store := memory.New()
	userID := seedImportUser(t, store)
	existing := &ce.Record{
		UserID:      userID,
		Title:       "Dup",
		Hours:       ce.Hours(2),
		CompletedOn: ce.NewTimePoint(2025, time.March, 10),
	}
	require.NoError(t, store.CreateRecord(context.Background(), existing))

	importer := &transfer.CSVImporter{Records: store}
	csvText := strings.Join([]string{
		"Title,Hours,Date Completed",
		",2,2025-01-01",
		"Bad Hours,abc,2025-01-01",
		"Zero,0,2025-01-01",
		"Fuzzy Date,1,sometime",
		",,",
		"Dup,2,2025-03-10",
	}, "\n")

	// WHEN importing
	now := ce.NewTimePoint(2025, time.June, 30)
	result, err := importer.Import(context.Background(), userID, strings.NewReader(csvText), now)
	require.NoError(t, err)

	// THEN only the fuzzy-date row imports, dated today, and each
	// problem row leaves a note with its file line number
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 4, result.Skipped, "blank row is ignored without counting")
	require.Len(t, result.Notes, 5)
	assert.Equal(t, "Row 2: Missing title", result.Notes[0])
	assert.Equal(t, `Row 3: Invalid hours "abc" for "Bad Hours"`, result.Notes[1])
	assert.Equal(t, `Row 4: Hours must be positive ("Zero")`, result.Notes[2])
	assert.Equal(t, `Row 5: Could not parse date "sometime" for "Fuzzy Date", using today`, result.Notes[3])
	assert.Equal(t, `Row 7: Duplicate skipped ("Dup" on 2025-03-10)`, result.Notes[4])

	records, err := store.RecordsByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		if rec.Title == "Fuzzy Date" {
			assert.Equal(t, "2025-06-30", rec.CompletedOn.String())
		}
	}

	assert.Equal(t, "Successfully imported 1 CE record. 4 rows skipped.", result.Summary("imported"))
}

func TestCSVImportRequiresTitleAndHoursColumns(t *testing.T) {
	// GIVEN a CSV missing the hours column entirely
	store := memory.New()
	userID := seedImportUser(t, store)
	importer := &transfer.CSVImporter{Records: store}

	csvText := "Title,Provider\nSomething,Kaplan\n"

	// WHEN importing
	_, err := importer.Import(context.Background(), userID, strings.NewReader(csvText), ce.Today())

	// THEN the import aborts and names the columns it saw
	require.Error(t, err)
	assert.ErrorIs(t, err, ce.ErrInvalidInput)
	assert.Contains(t, err.Error(), `"Title" and "Hours"`)
	assert.Contains(t, err.Error(), "Title, Provider")
}

func TestCSVImportToleratesByteOrderMark(t *testing.T) {
	// GIVEN an Excel-style export with a UTF-8 BOM before the header
	store := memory.New()
	userID := seedImportUser(t, store)
	importer := &transfer.CSVImporter{Records: store}

	csvText := "\xef\xbb\xbfTitle,Hours\nEthics Refresher,2\n"

	// WHEN importing
	result, err := importer.Import(context.Background(), userID, strings.NewReader(csvText), ce.Today())

	// THEN the BOM does not hide the Title column
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestCSVExportNewestFirstWithCategoryFilter(t *testing.T) {
	// GIVEN two records in different categories
	store := memory.New()
	userID := seedImportUser(t, store)
	ctx := context.Background()
	require.NoError(t, store.CreateRecord(ctx, &ce.Record{
		UserID: userID, Title: "Older Ethics", Provider: "Kaplan", Category: "Ethics",
		Hours: ce.Hours(2), CompletedOn: ce.NewTimePoint(2025, time.June, 1),
	}))
	require.NoError(t, store.CreateRecord(ctx, &ce.Record{
		UserID: userID, Title: "Newer Tax", Provider: "NATP", Category: "Tax",
		Hours: ce.Hours(1.5), CompletedOn: ce.NewTimePoint(2025, time.June, 15),
	}))

	exporter := &transfer.CSVExporter{Records: store}
	now := ce.NewTimePoint(2025, time.June, 30)

	// WHEN exporting everything
	data, filename, err := exporter.Export(ctx, userID, "", now)
	require.NoError(t, err)

	// THEN the file is newest first under the canonical header
	assert.Equal(t, "ce_records_20250630.csv", filename)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date Completed,Title,Provider,Category,Hours,Description", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2025-06-15,Newer Tax,NATP,Tax,1.5,"))
	assert.True(t, strings.HasPrefix(lines[2], "2025-06-01,Older Ethics,Kaplan,Ethics,2,"))

	// WHEN exporting one category
	data, filename, err = exporter.Export(ctx, userID, "Ethics", now)
	require.NoError(t, err)

	// THEN only that category appears and the filename carries it
	assert.Equal(t, "ce_records_Ethics_20250630.csv", filename)
	lines = strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Older Ethics")
}

func TestImportResultSummaryAndNoteCap(t *testing.T) {
	// GIVEN singular and plural outcomes
	one := transfer.ImportResult{Imported: 1, Skipped: 1}
	many := transfer.ImportResult{Imported: 3, Skipped: 2}

	// THEN the summary pluralizes correctly
	assert.Equal(t, "Successfully imported 1 CE record. 1 row skipped.", one.Summary("imported"))
	assert.Equal(t, "Successfully restored 3 CE records. 2 rows skipped.", many.Summary("restored"))
	assert.Equal(t, "Successfully imported 0 CE records.", transfer.ImportResult{}.Summary("imported"))

	// GIVEN more notes than the display cap
	var noisy transfer.ImportResult
	for i := 1; i <= 12; i++ {
		noisy.Notes = append(noisy.Notes, fmt.Sprintf("Row %d: Missing title", i))
	}

	// THEN the display shows ten and marks the rest
	display := noisy.NotesDisplay()
	assert.True(t, strings.HasSuffix(display, "..."))
	assert.Equal(t, 9, strings.Count(display, "; "))
	assert.Contains(t, display, "Row 10:")
	assert.NotContains(t, display, "Row 11:")

	assert.Empty(t, transfer.ImportResult{}.NotesDisplay())
}
