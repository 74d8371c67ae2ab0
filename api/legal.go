/*
legal.go - Terms, privacy, and disclaimer pages

PURPOSE:
  Serves the legal documents as rendered HTML. The markdown lives in
  legal/ and is embedded at build time so the binary is self-contained;
  goldmark renders it per request (the documents are tiny, caching
  would buy nothing).
*/
package api

import (
	"bytes"
	"embed"
	"net/http"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed legal/*.md
var legalFS embed.FS

var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// LegalTerms serves the terms of service.
// GET /api/legal/terms
func (h *Handler) LegalTerms(w http.ResponseWriter, r *http.Request) {
	h.serveLegal(w, "legal/terms.md")
}

// LegalPrivacy serves the privacy policy.
// GET /api/legal/privacy
func (h *Handler) LegalPrivacy(w http.ResponseWriter, r *http.Request) {
	h.serveLegal(w, "legal/privacy.md")
}

// LegalDisclaimer serves the accuracy disclaimer users acknowledge at
// registration.
// GET /api/legal/disclaimer
func (h *Handler) LegalDisclaimer(w http.ResponseWriter, r *http.Request) {
	h.serveLegal(w, "legal/disclaimer.md")
}

func (h *Handler) serveLegal(w http.ResponseWriter, path string) {
	src, err := legalFS.ReadFile(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Document unavailable", err)
		return
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert(src, &buf); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render document", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
