package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

var (
	// ErrNoJobDescription rejects a run whose job description is empty
	ErrNoJobDescription = errors.New("job description is required")
	// ErrNoResumes rejects a run with no uploaded résumés
	ErrNoResumes = errors.New("at least one résumé is required")
	// ErrNoReadableResumes is returned when every uploaded résumé failed text extraction
	ErrNoReadableResumes = errors.New("no résumé could be read")
)

// SimilarityError reports a failed similarity computation. The run is aborted
// before any row is persisted.
type SimilarityError struct {
	Strategy string
	Cause    error
}

func (e *SimilarityError) Error() string {
	return fmt.Sprintf("similarity (%s) failed: %v", e.Strategy, e.Cause)
}

func (e *SimilarityError) Unwrap() error {
	return e.Cause
}

// PersistError reports rows that could not be stored. The scores themselves are
// complete; rows written before the failure stay written.
type PersistError struct {
	RunID  uuid.UUID
	Failed []string
	// Err combines the individual failures; use multierr.Errors to split it.
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist %d row(s) for run %s (%s): %v",
		len(e.Failed), e.RunID, strings.Join(e.Failed, ", "), e.Err)
}

func (e *PersistError) Unwrap() []error {
	return multierr.Errors(e.Err)
}
