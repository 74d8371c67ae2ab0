// JSON backup and restore. The backup file carries the full picture
// (profile, designations, records) so users can read it standalone,
// but restore only replays records: accounts and designations belong
// to the live profile, not to an uploaded file.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fairhaven/cetrack/ce"
)

type Backup struct {
	ExportedAt   string              `json:"exported_at"`
	User         BackupUser          `json:"user"`
	Designations []BackupDesignation `json:"designations"`
	CERecords    []BackupRecord      `json:"ce_records"`
}

type BackupUser struct {
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	IsNapfaMember bool    `json:"is_napfa_member"`
	NapfaJoinDate *string `json:"napfa_join_date"`
}

type BackupDesignation struct {
	Designation string `json:"designation"`
	BirthMonth  int    `json:"birth_month"`
	State       string `json:"state"`
}

type BackupRecord struct {
	Title            string  `json:"title"`
	Provider         string  `json:"provider"`
	Hours            float64 `json:"hours"`
	DateCompleted    string  `json:"date_completed"`
	Category         string  `json:"category"`
	Description      string  `json:"description"`
	IsNapfaApproved  bool    `json:"is_napfa_approved"`
	IsEthicsCourse   bool    `json:"is_ethics_course"`
	NapfaSubjectArea string  `json:"napfa_subject_area"`
}

// BackupExporter serializes everything a user owns.
type BackupExporter struct {
	Users       ce.UserStore
	Assignments ce.AssignmentStore
	Records     ce.RecordStore
}

// Export builds the backup JSON (indented, stable field order) and a
// suggested filename. now feeds both the exported_at stamp and the
// filename.
func (ex *BackupExporter) Export(ctx context.Context, userID ce.UserID, now time.Time) ([]byte, string, error) {
	user, err := ex.Users.UserByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	assignments, err := ex.Assignments.AssignmentsByUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	records, err := exportRecords(ctx, ex.Records, userID, "")
	if err != nil {
		return nil, "", err
	}

	backup := Backup{
		ExportedAt: now.UTC().Format(time.RFC3339),
		User: BackupUser{
			Username:      user.Username,
			Email:         user.Email,
			IsNapfaMember: user.NapfaMember,
		},
		Designations: make([]BackupDesignation, 0, len(assignments)),
		CERecords:    make([]BackupRecord, 0, len(records)),
	}
	if user.NapfaJoinDate != nil {
		joined := user.NapfaJoinDate.String()
		backup.User.NapfaJoinDate = &joined
	}
	for _, a := range assignments {
		backup.Designations = append(backup.Designations, BackupDesignation{
			Designation: string(a.Code),
			BirthMonth:  a.BirthMonth,
			State:       a.State,
		})
	}
	for _, rec := range records {
		backup.CERecords = append(backup.CERecords, BackupRecord{
			Title:            rec.Title,
			Provider:         rec.Provider,
			Hours:            rec.Hours.Float64(),
			DateCompleted:    rec.CompletedOn.String(),
			Category:         rec.Category,
			Description:      rec.Description,
			IsNapfaApproved:  rec.NapfaApproved,
			IsEthicsCourse:   rec.EthicsCourse,
			NapfaSubjectArea: rec.NapfaSubjectArea,
		})
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return data, exportFilename("ce_tracker_backup", "", "json", ce.DateOf(now)), nil
}

// BackupImporter replays the ce_records section of a backup file.
type BackupImporter struct {
	Records ce.RecordStore
}

// Import restores records from backup JSON. Entries it cannot use are
// skipped with a note; duplicates of records already present are
// skipped silently, so restoring on top of live data is safe.
//
// Dates here are strict ISO (a backup we wrote never needs the CSV
// importer's format guessing); anything else falls back to today with
// a note.
func (im *BackupImporter) Import(ctx context.Context, userID ce.UserID, data []byte, now ce.TimePoint) (ImportResult, error) {
	var result ImportResult

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return result, fmt.Errorf("%w: not a valid backup file", ce.ErrInvalidInput)
	}
	rawRecords, ok := top["ce_records"]
	if !ok {
		return result, fmt.Errorf("%w: invalid backup file: missing \"ce_records\" key", ce.ErrInvalidInput)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(rawRecords, &entries); err != nil {
		return result, fmt.Errorf("%w: invalid backup file: \"ce_records\" must be an array", ce.ErrInvalidInput)
	}

	for i, raw := range entries {
		num := i + 1

		var entry map[string]any
		if err := json.Unmarshal(raw, &entry); err != nil || entry == nil {
			result.Skipped++
			result.Notes = append(result.Notes, fmt.Sprintf("Record %d: not a valid object", num))
			continue
		}

		title := strings.TrimSpace(asString(entry["title"]))
		if title == "" {
			result.Skipped++
			result.Notes = append(result.Notes, fmt.Sprintf("Record %d: missing title", num))
			continue
		}

		hours, err := asFloat(entry["hours"])
		if err != nil {
			result.Skipped++
			result.Notes = append(result.Notes, fmt.Sprintf("Record %d: invalid hours for %q", num, title))
			continue
		}
		if hours <= 0 {
			result.Skipped++
			result.Notes = append(result.Notes, fmt.Sprintf("Record %d: hours must be positive (%q)", num, title))
			continue
		}

		completedOn := now
		if raw := strings.TrimSpace(asString(entry["date_completed"])); raw != "" {
			parsed, err := ce.ParseDate(raw)
			if err != nil {
				result.Notes = append(result.Notes, fmt.Sprintf("Record %d: invalid date %q for %q, using today", num, raw, title))
			} else {
				completedOn = parsed
			}
		}

		amount := ce.Hours(hours)
		exists, err := im.Records.RecordExists(ctx, userID, title, completedOn, amount)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
			continue
		}

		rec := &ce.Record{
			UserID:           userID,
			Title:            title,
			Provider:         asString(entry["provider"]),
			Category:         asString(entry["category"]),
			Description:      asString(entry["description"]),
			Hours:            amount,
			CompletedOn:      completedOn,
			NapfaApproved:    asBool(entry["is_napfa_approved"]),
			EthicsCourse:     asBool(entry["is_ethics_course"]),
			NapfaSubjectArea: asString(entry["napfa_subject_area"]),
		}
		if err := im.Records.CreateRecord(ctx, rec); err != nil {
			if errors.Is(err, ce.ErrDuplicateRecord) {
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Imported++
	}

	return result, nil
}

// ===== FIELD COERCION =====
//
// Backups from older exports may carry numbers as strings. Read
// loosely, write strictly.

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
