package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docaudit/internal/config"
	"github.com/dgallion1/docaudit/internal/loader"
	"github.com/dgallion1/docaudit/internal/parser"
	"github.com/dgallion1/docaudit/internal/report"
	"github.com/dgallion1/docaudit/internal/validate"
)

// handleValidate checks one uploaded document. Links to other files are
// not resolved since the upload has no surrounding documentation set.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !loader.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	rules, err := config.LoadRules(s.cfg.RulesPath)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	lines, err := s.loader.ReadLines(bytes.NewReader(data), filename)
	if err != nil {
		var ioErr *loader.IOError
		if errors.As(err, &ioErr) {
			err = ioErr.Err
		}
		jsonError(w, "cannot read document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	topic := r.FormValue("topic")
	if topic == "" {
		topic = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	doc := loader.NewDocument(filename, topic, lines)
	parser.Parse(doc)
	findings := validate.Validate(doc, rules.ValidateOptions())

	rep := report.Aggregate([]report.DocumentResult{{Path: filename, Findings: findings}})
	if rules.Strict || r.FormValue("strict") == "true" {
		rep = rep.Strict()
	}
	s.log.Info("validated upload", "filename", filename, "findings", len(findings), "pass", rep.Pass)

	w.Header().Set("Content-Type", "application/json")
	report.WriteJSON(w, rep)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
