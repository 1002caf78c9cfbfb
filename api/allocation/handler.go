// Package allocation exposes the HTTP surface of the allocation service:
// batch upload, run processing and run history.
package allocation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/emberops/wildfire/core/dispatch/logging"
	"github.com/emberops/wildfire/core/model"
)

// Processor runs one allocation over the batch file at path.
type Processor interface {
	Process(ctx context.Context, path, strategy string) (model.Report, error)
}

// NewHealthHandler returns a liveness probe handler. Mounted at the mux root
// it answers / and /health and 404s everything else.
func NewHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/health" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// NewUploadHandler stores an uploaded CSV batch under dir and returns the
// stored path via POST multipart form field "file".
func NewUploadHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "no file provided")
			return
		}
		defer func() { _ = file.Close() }()
		name := filepath.Base(header.Filename)
		if name == "." || name == string(filepath.Separator) {
			writeError(w, http.StatusBadRequest, "invalid file name")
			return
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		path := filepath.Join(dir, name)
		dst, err := os.Create(path)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer func() { _ = dst.Close() }()
		if _, err := io.Copy(dst, file); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message":   "file uploaded successfully",
			"file_path": path,
		})
	})
}

type processRequest struct {
	FilePath string `json:"file_path"`
	Strategy string `json:"strategy"`
}

// NewProcessHandler runs an allocation over an uploaded batch via POST with a
// JSON body carrying file_path and an optional strategy override.
func NewProcessHandler(proc Processor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req processRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.FilePath == "" {
			writeError(w, http.StatusBadRequest, "no file path provided")
			return
		}
		report, err := proc.Process(r.Context(), req.FilePath, req.Strategy)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, report)
	})
}

// NewRunsHandler exposes run history via GET. Requests must include an
// Authorization header with "Bearer <token>" when token is non-empty.
func NewRunsHandler(store logging.RunStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		q := logging.RunQuery{Strategy: r.URL.Query().Get("strategy")}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		runs, err := store.Query(r.Context(), q)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if runs == nil {
			runs = []logging.RunRecord{}
		}
		writeJSON(w, http.StatusOK, runs)
	})
}

// statusFor maps the typed error taxonomy to HTTP status codes.
func statusFor(err error) int {
	var nf *model.NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound
	}
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest
	}
	var cfgErr *model.ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
