package transcriber

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnintelligible marks a chunk the recognizer could not turn into text.
// The chunk is skipped and transcription continues.
var ErrUnintelligible = errors.New("speech not understood")

// Stage names the external call that failed.
type Stage string

const (
	StageRecognize Stage = "recognize"
	StageTranslate Stage = "translate"
)

// ServiceError marks a backend failure. It is never retried and stops
// the chunk loop, keeping whatever was transcribed before it.
type ServiceError struct {
	Stage Stage
	Err   error
}

func (e *ServiceError) Error() string {
	if e == nil || e.Err == nil {
		return "service error"
	}
	return fmt.Sprintf("%s service error: %v", e.Stage, e.Err)
}

func (e *ServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewServiceError wraps err; nil stays nil.
func NewServiceError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var existing *ServiceError
	if errors.As(err, &existing) {
		return err
	}
	return &ServiceError{Stage: stage, Err: err}
}

// IsServiceError reports whether err is (or wraps) a ServiceError.
func IsServiceError(err error) bool {
	var svc *ServiceError
	return errors.As(err, &svc)
}

// OutcomeKind tags the result of one chunk attempt.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeUnintelligible
	OutcomeServiceError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeUnintelligible:
		return "unintelligible"
	case OutcomeServiceError:
		return "service-error"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of recognizing (and translating) one chunk.
type Outcome struct {
	Kind OutcomeKind
	Text string
	Err  error
}

// Classify turns a recognizer return into an Outcome. Blank text counts as
// unintelligible; any error that is not ErrUnintelligible is a service error.
func Classify(text string, err error) Outcome {
	switch {
	case err == nil && strings.TrimSpace(text) == "":
		return Outcome{Kind: OutcomeUnintelligible, Err: ErrUnintelligible}
	case err == nil:
		return Outcome{Kind: OutcomeOK, Text: text}
	case errors.Is(err, ErrUnintelligible):
		return Outcome{Kind: OutcomeUnintelligible, Err: err}
	default:
		return Outcome{Kind: OutcomeServiceError, Err: NewServiceError(StageRecognize, err)}
	}
}
