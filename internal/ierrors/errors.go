// Package ierrors defines the error kinds shared by the corpus, archive,
// classifier and lifecycle packages.
package ierrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindMalformedData
	KindValidationFailure
	KindIOFailure
	KindPredictionError
	KindUnknownIntent
	KindSerializationError
	KindPermissionDenied
	KindPathInvalid
	KindSourceNotFound
	KindTypeError
	KindMissingExamples
)

var (
	ErrNotFound           = errors.New("not found")
	ErrMalformedData      = errors.New("malformed data")
	ErrValidationFailure  = errors.New("validation failure")
	ErrIOFailure          = errors.New("i/o failure")
	ErrPredictionError    = errors.New("prediction error")
	ErrUnknownIntent      = errors.New("unknown intent")
	ErrSerializationError = errors.New("serialization error")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrPathInvalid        = errors.New("invalid path")
	ErrSourceNotFound     = errors.New("source not found")
	ErrTypeError          = errors.New("type error")
	ErrMissingExamples    = errors.New("missing examples")
)

var sentinels = map[Kind]error{
	KindNotFound:           ErrNotFound,
	KindMalformedData:      ErrMalformedData,
	KindValidationFailure:  ErrValidationFailure,
	KindIOFailure:          ErrIOFailure,
	KindPredictionError:    ErrPredictionError,
	KindUnknownIntent:      ErrUnknownIntent,
	KindSerializationError: ErrSerializationError,
	KindPermissionDenied:   ErrPermissionDenied,
	KindPathInvalid:        ErrPathInvalid,
	KindSourceNotFound:     ErrSourceNotFound,
	KindTypeError:          ErrTypeError,
	KindMissingExamples:    ErrMissingExamples,
}

func (k Kind) String() string {
	if s, ok := sentinels[k]; ok {
		return s.Error()
	}
	return "unknown"
}

// Error is a failure tagged with a Kind. Err keeps the original cause.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// New returns an error of the given kind.
func New(kind Kind, op, path string, err error) error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Newf returns an error of the given kind with a formatted message and no cause.
func Newf(kind Kind, op, path, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
