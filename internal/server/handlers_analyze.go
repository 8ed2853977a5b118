package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/pipeline"
	"github.com/jonathan/resume-screener/internal/server/middleware"
	"github.com/jonathan/resume-screener/internal/types"
)

// multipartMemory is how much of a form is held in memory before spilling to disk.
const multipartMemory = 8 << 20

// Completion statuses reported by the stream and the analyze response.
const (
	StatusCompleted = "completed"
	// StatusPartial means scores are complete but some rows were not stored.
	StatusPartial = "partial"
)

// analyzeResponse is the body of a successful POST /analyze.
type analyzeResponse struct {
	*types.AnalysisResult
	Status  string `json:"status"`
	Warning string `json:"warning,omitempty"`
}

// unreadableResponse answers a run where no résumé could be read.
type unreadableResponse struct {
	Error   string                  `json:"error"`
	Skipped []types.SkippedDocument `json:"skipped"`
}

// handleAnalyze scores the uploaded résumés against the job description.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseAnalyzeRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	result, err := s.analyzer.Run(r.Context(), req)
	resp, err := s.analyzeOutcome(result, err)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoReadableResumes) && result != nil {
			writeJSON(w, s.log, HTTPStatus(err), unreadableResponse{Error: err.Error(), Skipped: result.Skipped})
			return
		}
		s.errorResponse(w, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, resp)
}

// handleAnalyzeStream runs an analysis and streams its progress as server-sent events.
// Request errors found before the stream starts are answered as plain JSON errors.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseAnalyzeRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		writeError(w, s.log, http.StatusInternalServerError, err.Error())
		return
	}
	req.OnProgress = sse.WriteProgress

	result, err := s.analyzer.Run(r.Context(), req)
	resp, err := s.analyzeOutcome(result, err)
	if err != nil {
		status, message := HTTPStatus(err), err.Error()
		if status == http.StatusInternalServerError {
			s.log.Error("streamed analysis failed", zap.Error(err))
			message = "internal server error"
		}
		sse.WriteError(status, message)
		return
	}

	_ = sse.WriteEvent(EventResult, resp)
	sse.WriteComplete(resp.Run.ID.String(), resp.Status)
	if err := sse.Err(); err != nil {
		s.log.Info("stream client went away", zap.String("run_id", resp.Run.ID.String()), zap.Error(err))
	}
}

// analyzeOutcome turns a pipeline result into a response. A storage failure
// still answers with the full table, marked partial.
func (s *Server) analyzeOutcome(result *types.AnalysisResult, err error) (*analyzeResponse, error) {
	var persistErr *pipeline.PersistError
	switch {
	case err == nil:
		return &analyzeResponse{AnalysisResult: result, Status: StatusCompleted}, nil
	case errors.As(err, &persistErr):
		s.log.Warn("analysis finished with storage failures",
			zap.String("run_id", persistErr.RunID.String()),
			zap.Strings("failed", persistErr.Failed),
			zap.Error(err))
		return &analyzeResponse{
			AnalysisResult: result,
			Status:         StatusPartial,
			Warning:        fmt.Sprintf("%d row(s) could not be saved", len(persistErr.Failed)),
		}, nil
	default:
		return nil, err
	}
}

// parseAnalyzeRequest reads the multipart form: job_description or job_url,
// and résumés under files or files[].
func (s *Server) parseAnalyzeRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	limits := s.cfg.Server
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return pipeline.Request{}, &ErrPayloadTooLarge{Limit: limits.MaxUploadBytes}
		}
		return pipeline.Request{}, &ErrValidation{Field: "body", Message: "expected a multipart form"}
	}

	userID, err := middleware.GetUserID(r)
	if err != nil {
		return pipeline.Request{}, err
	}

	jd, err := s.jobDescription(r.Context(), r.MultipartForm)
	if err != nil {
		return pipeline.Request{}, err
	}

	headers := append(r.MultipartForm.File["files"], r.MultipartForm.File["files[]"]...)
	if len(headers) > limits.MaxFiles {
		return pipeline.Request{}, &ErrValidation{Field: "files", Message: fmt.Sprintf("at most %d files per request", limits.MaxFiles)}
	}

	uploads := make([]types.Upload, 0, len(headers))
	for _, fh := range headers {
		up, err := readUpload(fh, limits.MaxFileBytes)
		if err != nil {
			return pipeline.Request{}, err
		}
		uploads = append(uploads, up)
	}

	return pipeline.Request{
		JobDescription: jd,
		Uploads:        uploads,
		UserID:         &userID,
	}, nil
}

// jobDescription returns the pasted text, or fetches job_url when no text was given.
func (s *Server) jobDescription(ctx context.Context, form *multipart.Form) (string, error) {
	text := strings.TrimSpace(formValue(form, "job_description"))
	if text != "" {
		return text, nil
	}
	url := strings.TrimSpace(formValue(form, "job_url"))
	if url == "" {
		return "", pipeline.ErrNoJobDescription
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", &ErrValidation{Field: "job_url", Message: "must be an http or https URL"}
	}

	text, err := s.fetchJD(ctx, url)
	if err != nil {
		return "", err
	}
	return text, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func readUpload(fh *multipart.FileHeader, maxBytes int64) (types.Upload, error) {
	name := filepath.Base(fh.Filename)
	if fh.Size > maxBytes {
		return types.Upload{}, &ErrPayloadTooLarge{Filename: name, Limit: maxBytes}
	}

	f, err := fh.Open()
	if err != nil {
		return types.Upload{Filename: name, ReadErr: fmt.Errorf("failed to open upload: %w", err)}, nil
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return types.Upload{Filename: name, ReadErr: fmt.Errorf("failed to read upload: %w", err)}, nil
	}
	return types.Upload{Filename: name, Content: content}, nil
}
