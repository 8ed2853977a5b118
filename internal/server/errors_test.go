package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/pipeline"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"username taken", &ErrUsernameTaken{Username: "alice"}, http.StatusConflict},
		{"invalid credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"run not found", &ErrRunNotFound{RunID: uuid.New()}, http.StatusNotFound},
		{"validation", &ErrValidation{Field: "files", Message: "required"}, http.StatusBadRequest},
		{"no job description", pipeline.ErrNoJobDescription, http.StatusBadRequest},
		{"no resumes", pipeline.ErrNoResumes, http.StatusBadRequest},
		{"too large", &ErrPayloadTooLarge{Filename: "a.pdf", Limit: 10}, http.StatusRequestEntityTooLarge},
		{"max bytes", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"unreadable", pipeline.ErrNoReadableResumes, http.StatusUnprocessableEntity},
		{"similarity", &pipeline.SimilarityError{Strategy: "embedding", Cause: errors.New("down")}, http.StatusBadGateway},
		{"job url", fmt.Errorf("%w: timeout", ingestion.ErrHTTPRequestFailed), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("register: %w", &ErrUsernameTaken{}), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "username already registered: alice", (&ErrUsernameTaken{Username: "alice"}).Error())
	assert.Equal(t, "invalid username or password", (&ErrInvalidCredentials{}).Error())
	assert.Equal(t, "validation error: files - required", (&ErrValidation{Field: "files", Message: "required"}).Error())
	assert.Contains(t, (&ErrPayloadTooLarge{Filename: "a.pdf", Limit: 5}).Error(), "a.pdf")
	assert.Contains(t, (&ErrPayloadTooLarge{Limit: 5}).Error(), "request body")
}
