package transfer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fairhaven/cetrack/ce"
)

// csvHeader is the canonical export header. Import accepts these names
// plus the aliases below.
var csvHeader = []string{"Date Completed", "Title", "Provider", "Category", "Hours", "Description"}

// headerAliases maps normalized column names onto record fields.
// Normalization lowercases, trims, and turns underscores into spaces,
// so "Date_Completed", "date completed", and "DATE COMPLETED" all land
// on the same field.
var headerAliases = map[string]string{
	"date completed":  "date",
	"date":            "date",
	"completion date": "date",
	"title":           "title",
	"course title":    "title",
	"course name":     "title",
	"name":            "title",
	"provider":        "provider",
	"sponsor":         "provider",
	"source":          "provider",
	"category":        "category",
	"type":            "category",
	"subject":         "category",
	"hours":           "hours",
	"credit hours":    "hours",
	"credits":         "hours",
	"ce hours":        "hours",
	"cpe hours":       "hours",
	"description":     "description",
	"notes":           "description",
	"details":         "description",
}

// importDateLayouts are tried in order. ISO first, then the US forms,
// then day-first and slashed ISO as last resorts.
var importDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"01/02/06",
	"02/01/2006",
	"2006/01/02",
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), "_", " "))
}

func parseImportDate(s string) (ce.TimePoint, bool) {
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ce.DateOf(t), true
		}
	}
	return ce.TimePoint{}, false
}

// CSVImporter loads records from a CSV upload.
type CSVImporter struct {
	Records ce.RecordStore
}

// Import reads the CSV, creating one record per usable row. Rows it
// cannot use are skipped with a note; only structural problems (no
// header, missing required columns, storage failure) abort.
//
// Row numbers in notes are 1-based file lines, so the first data row
// is row 2.
func (im *CSVImporter) Import(ctx context.Context, userID ce.UserID, r io.Reader, now ce.TimePoint) (ImportResult, error) {
	var result ImportResult

	data, err := io.ReadAll(r)
	if err != nil {
		return result, fmt.Errorf("read csv: %w", err)
	}
	// Excel exports lead with a UTF-8 BOM.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return result, fmt.Errorf("%w: csv file is empty", ce.ErrInvalidInput)
	}
	if err != nil {
		return result, fmt.Errorf("parse csv header: %w", err)
	}

	cols := make(map[string]int)
	var found []string
	for i, h := range header {
		name := normalizeHeader(h)
		found = append(found, strings.TrimSpace(h))
		if field, ok := headerAliases[name]; ok {
			cols[field] = i
		}
	}
	if _, ok := cols["title"]; !ok {
		return result, missingColumnsErr(found)
	}
	if _, ok := cols["hours"]; !ok {
		return result, missingColumnsErr(found)
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("parse csv: %w", err)
		}
		rowNum++

		title := field(row, "title")
		hoursRaw := field(row, "hours")

		// A row with neither is padding, not data.
		if title == "" && hoursRaw == "" {
			continue
		}
		if title == "" {
			result.Skipped++
			result.Notes = append(result.Notes, fmt.Sprintf("Row %d: Missing title", rowNum))
			continue
		}

		hours, err := strconv.ParseFloat(hoursRaw, 64)
		if err != nil {
			result.Skipped++
			result.Notes = append(result.Notes, fmt.Sprintf("Row %d: Invalid hours %q for %q", rowNum, hoursRaw, title))
			continue
		}
		if hours <= 0 {
			result.Skipped++
			result.Notes = append(result.Notes, fmt.Sprintf("Row %d: Hours must be positive (%q)", rowNum, title))
			continue
		}

		completedOn := now
		if raw := field(row, "date"); raw != "" {
			parsed, ok := parseImportDate(raw)
			if ok {
				completedOn = parsed
			} else {
				result.Notes = append(result.Notes, fmt.Sprintf("Row %d: Could not parse date %q for %q, using today", rowNum, raw, title))
			}
		}

		amount := ce.Hours(hours)
		exists, err := im.Records.RecordExists(ctx, userID, title, completedOn, amount)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
			result.Notes = append(result.Notes, fmt.Sprintf("Row %d: Duplicate skipped (%q on %s)", rowNum, title, completedOn))
			continue
		}

		rec := &ce.Record{
			UserID:      userID,
			Title:       title,
			Provider:    field(row, "provider"),
			Category:    field(row, "category"),
			Description: field(row, "description"),
			Hours:       amount,
			CompletedOn: completedOn,
		}
		if err := im.Records.CreateRecord(ctx, rec); err != nil {
			if errors.Is(err, ce.ErrDuplicateRecord) {
				result.Skipped++
				result.Notes = append(result.Notes, fmt.Sprintf("Row %d: Duplicate skipped (%q on %s)", rowNum, title, completedOn))
				continue
			}
			return result, err
		}
		result.Imported++
	}

	return result, nil
}

func missingColumnsErr(found []string) error {
	return fmt.Errorf("%w: CSV must have at least \"Title\" and \"Hours\" columns. Found columns: %s",
		ce.ErrInvalidInput, strings.Join(found, ", "))
}

// CSVExporter writes a user's records as CSV.
type CSVExporter struct {
	Records ce.RecordStore
}

// Export renders the records newest first, optionally filtered to one
// category (exact match). Returns the file contents and a suggested
// filename.
func (ex *CSVExporter) Export(ctx context.Context, userID ce.UserID, category string, now ce.TimePoint) ([]byte, string, error) {
	records, err := exportRecords(ctx, ex.Records, userID, category)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, "", err
	}
	for _, rec := range records {
		row := []string{
			rec.CompletedOn.String(),
			rec.Title,
			rec.Provider,
			rec.Category,
			rec.Hours.Value.String(),
			rec.Description,
		}
		if err := w.Write(row); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), exportFilename("ce_records", category, "csv", now), nil
}

// exportRecords fetches a user's records newest first, applying the
// optional category filter. Shared by the CSV and PDF exporters.
func exportRecords(ctx context.Context, store ce.RecordStore, userID ce.UserID, category string) ([]ce.Record, error) {
	records, err := store.RecordsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if category != "" {
		filtered := records[:0:0]
		for _, rec := range records {
			if rec.Category == category {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	// Stores already return newest first; keep that contract explicit
	// for anything that doesn't.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CompletedOn.Time.After(records[j].CompletedOn.Time)
	})
	return records, nil
}
