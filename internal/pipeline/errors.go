package pipeline

import (
	"errors"
	"fmt"

	"github.com/julianshen/repodoc/internal/ingest"
)

// ErrorKind classifies a failed run for callers that map failures to
// statuses or exit codes.
type ErrorKind string

const (
	KindInvalidSource          ErrorKind = "invalid_source"
	KindRepositoryNotFound     ErrorKind = "repository_not_found"
	KindAuthenticationRequired ErrorKind = "authentication_required"
	KindTransportFailure       ErrorKind = "transport_failure"
	KindStageFailure           ErrorKind = "stage_failure"
)

// RunError is the single structured failure a run surfaces to its caller.
type RunError struct {
	Kind  ErrorKind
	Stage Stage
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// ingestionError wraps an ingestion failure with the matching kind.
func ingestionError(err error) *RunError {
	kind := KindTransportFailure
	var te *ingest.TransportError
	switch {
	case errors.Is(err, ingest.ErrInvalidSourceLocator):
		kind = KindInvalidSource
	case errors.Is(err, ingest.ErrRepositoryNotFound):
		kind = KindRepositoryNotFound
	case errors.Is(err, ingest.ErrAuthenticationRequired):
		kind = KindAuthenticationRequired
	case errors.As(err, &te):
		kind = KindTransportFailure
	}
	return &RunError{Kind: kind, Stage: StageIngestion, Err: err}
}

func stageError(stage Stage, err error) *RunError {
	return &RunError{Kind: KindStageFailure, Stage: stage, Err: err}
}

// KindOf returns the kind of a *RunError in err's chain, or
// KindStageFailure for anything else.
func KindOf(err error) ErrorKind {
	var re *RunError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindStageFailure
}
