/*
Package transfer moves CE records in and out of the system.

PURPOSE:
  Implements the bulk data paths: CSV import with forgiving header and
  date handling, CSV export, a printable PDF export, and a full JSON
  backup with record-only restore.

KEY CONCEPTS:
  - ImportResult: counts plus per-row notes. Imports never abort on a
    bad row; they skip it and tell the user which row and why.
  - Duplicate suppression: importers rely on the store's
    (user, title, date, hours) uniqueness check so that re-importing
    the same file is harmless.
  - Explicit time: importers take "now" so date fallbacks are
    deterministic and testable.

FORMATS:
  CSV    Header aliases map common column spellings onto our fields.
         Six date layouts are tried in order; an unparseable date
         falls back to today with a note.
  JSON   Backup carries the user profile, designations, and records;
         restore reads records only.
  PDF    Landscape letter table via gofpdf.

SEE ALSO:
  - csv.go: CSVImporter / CSVExporter
  - backup.go: BackupExporter / BackupImporter
  - pdf.go: PDFExporter
*/
package transfer

import (
	"fmt"
	"strings"

	"github.com/fairhaven/cetrack/ce"
)

// noteDisplayCap limits how many per-row notes are surfaced to the
// user; the counts still cover every row.
const noteDisplayCap = 10

// ImportResult reports what an import did.
type ImportResult struct {
	Imported int
	Skipped  int
	Notes    []string
}

// Summary builds the user-facing outcome line. verb is the past-tense
// action, "imported" for CSV and "restored" for backups.
func (r ImportResult) Summary(verb string) string {
	msg := fmt.Sprintf("Successfully %s %d CE %s.", verb, r.Imported, plural(r.Imported, "record"))
	if r.Skipped > 0 {
		msg += fmt.Sprintf(" %d %s skipped.", r.Skipped, plural(r.Skipped, "row"))
	}
	return msg
}

// NotesDisplay joins the first few notes for display, with an ellipsis
// when more were recorded. Empty when the import was clean.
func (r ImportResult) NotesDisplay() string {
	if len(r.Notes) == 0 {
		return ""
	}
	shown := r.Notes
	suffix := ""
	if len(shown) > noteDisplayCap {
		shown = shown[:noteDisplayCap]
		suffix = "..."
	}
	return strings.Join(shown, "; ") + suffix
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// exportFilename builds names like ce_records_20250630.csv, inserting
// the category (spaces underscored) when one was filtered.
func exportFilename(prefix, category, ext string, now ce.TimePoint) string {
	stamp := strings.ReplaceAll(now.String(), "-", "")
	if category != "" {
		return prefix + "_" + strings.ReplaceAll(category, " ", "_") + "_" + stamp + "." + ext
	}
	return prefix + "_" + stamp + "." + ext
}

// clip truncates to at most max runes.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
