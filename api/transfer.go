/*
transfer.go - CSV/PDF/JSON import and export endpoints

PURPOSE:
  File movement in and out of the system. Uploads arrive as multipart
  form files; downloads set Content-Disposition with the filename the
  transfer package suggests. After a bulk import that created records,
  a compliance snapshot is captured so the admin timeline shows the
  jump.

SEE ALSO:
  - transfer/: Parsing, rendering, and the per-row note rules
*/
package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/fairhaven/cetrack/ce"
	"github.com/fairhaven/cetrack/transfer"
)

// maxUploadBytes bounds import uploads. CSV exports from other tools
// run a few hundred KB; 10 MB leaves generous headroom.
const maxUploadBytes = 10 << 20

// ImportCSV imports records from an uploaded CSV file.
// POST /api/records/import (multipart, field "csv_file")
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	file, header, ok := h.formFile(w, r, "csv_file")
	if !ok {
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "Please upload a CSV file.", ce.ErrInvalidInput)
		return
	}

	importer := &transfer.CSVImporter{Records: h.Store}
	result, err := importer.Import(ctx, user.ID, file, h.now())
	if err != nil {
		if ce.IsClientError(err) {
			writeError(w, http.StatusBadRequest, clientMessage(err), err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to import CSV", err)
		return
	}

	h.snapshotAfterImport(ctx, user.ID, result.Imported)
	h.Log.Info().
		Str("username", user.Username).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("csv import")
	writeJSON(w, http.StatusOK, toImportResultDTO(result, "imported"))
}

// ExportCSV downloads the user's records as CSV.
// GET /api/records/export/csv?category=...
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	exporter := &transfer.CSVExporter{Records: h.Store}
	data, filename, err := exporter.Export(ctx, user.ID, r.URL.Query().Get("category"), h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export CSV", err)
		return
	}

	sendAttachment(w, data, filename, "text/csv")
}

// ExportPDF downloads the user's records as a formatted PDF report.
// GET /api/records/export/pdf?category=...
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	exporter := &transfer.PDFExporter{Users: h.Store, Records: h.Store}
	data, filename, err := exporter.Export(ctx, user.ID, r.URL.Query().Get("category"), h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export PDF", err)
		return
	}

	sendAttachment(w, data, filename, "application/pdf")
}

// ExportBackup downloads the full account backup as JSON.
// GET /api/backup
func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	exporter := &transfer.BackupExporter{Users: h.Store, Assignments: h.Store, Records: h.Store}
	data, filename, err := exporter.Export(ctx, user.ID, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export backup", err)
		return
	}

	sendAttachment(w, data, filename, "application/json")
}

// ImportBackup restores records from an uploaded backup file.
// POST /api/backup (multipart, field "backup_file")
func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFrom(ctx)

	file, header, ok := h.formFile(w, r, "backup_file")
	if !ok {
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".json") {
		writeError(w, http.StatusBadRequest, "Please upload a JSON file.", ce.ErrInvalidInput)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload", err)
		return
	}

	importer := &transfer.BackupImporter{Records: h.Store}
	result, err := importer.Import(ctx, user.ID, data, h.now())
	if err != nil {
		if ce.IsClientError(err) {
			writeError(w, http.StatusBadRequest, clientMessage(err), err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to restore backup", err)
		return
	}

	h.snapshotAfterImport(ctx, user.ID, result.Imported)
	h.Log.Info().
		Str("username", user.Username).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("backup restore")
	writeJSON(w, http.StatusOK, toImportResultDTO(result, "restored"))
}

// =============================================================================
// HELPERS
// =============================================================================

// formFile pulls one named upload out of a multipart request, writing
// the 400 itself when the field is absent.
func (h *Handler) formFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No file selected.", ce.ErrInvalidInput)
		return nil, nil, false
	}
	file, header, err := r.FormFile(field)
	if err != nil || header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected.", ce.ErrInvalidInput)
		return nil, nil, false
	}
	return file, header, true
}

func sendAttachment(w http.ResponseWriter, data []byte, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// clientMessage strips the sentinel prefix so the user sees the
// explanation, not the wrapping.
func clientMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}

// snapshotAfterImport records the post-import standing when anything
// was created. Failures here never fail the import response.
func (h *Handler) snapshotAfterImport(ctx context.Context, userID ce.UserID, imported int) {
	if imported == 0 {
		return
	}
	if _, err := h.Snaps.CaptureUser(ctx, userID, h.now(), ce.SnapshotImport); err != nil {
		h.Log.Warn().Err(err).Msg("post-import snapshot failed")
	}
}
