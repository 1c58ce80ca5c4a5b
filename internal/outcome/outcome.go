// Package outcome defines the pipeline's tagged error type and the integer
// result codes reported for each sub-run.
//
// Internally every stage returns an *Error carrying its Kind and the wrapped
// cause. At the process boundary CodeOf collapses it into one of the six
// externally visible codes.
package outcome

import (
	"errors"
	"fmt"
)

// Result codes, one per logical sub-run (sea file, air file, storm pair).
const (
	CodeSuccess     = 0
	CodeTrimmed     = 1
	CodeBadFileType = 2
	CodeChronology  = 3
	CodeNoOverlap   = 4
	CodeUnexpected  = 5
)

// CodeName returns a human-readable name for a result code.
func CodeName(code int) string {
	switch code {
	case CodeSuccess:
		return "Success"
	case CodeTrimmed:
		return "SuccessTrimmed"
	case CodeBadFileType:
		return "InvalidFileType"
	case CodeChronology:
		return "ChronologyViolation"
	case CodeNoOverlap:
		return "NoOverlap"
	case CodeUnexpected:
		return "UnexpectedFailure"
	default:
		return fmt.Sprintf("Code(%d)", code)
	}
}

var (
	// Validation
	ErrInvalidFileType   = errors.New("invalid input file type")
	ErrChronology        = errors.New("dates are not in chronological order")
	ErrMalformedDate     = errors.New("malformed date")
	ErrUnknownInstrument = errors.New("unknown instrument")

	// Alignment
	ErrNoOverlap = errors.New("instruments do not overlap in time")

	// Algorithmic preconditions
	ErrEmptySeries           = errors.New("empty series")
	ErrDegenerateRange       = errors.New("resolved end index is not after start index")
	ErrInsufficientWaves     = errors.New("fewer than 3 complete waves")
	ErrInsufficientCrossings = errors.New("fewer than 2 upward zero crossings")
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindInputValidation Kind = iota + 1
	KindOverlap
	KindIOFailure
	KindStatistics
)

func (k Kind) String() string {
	switch k {
	case KindInputValidation:
		return "InputValidationError"
	case KindOverlap:
		return "OverlapError"
	case KindIOFailure:
		return "IOFailure"
	case KindStatistics:
		return "StatisticsError"
	default:
		return "UnknownError"
	}
}

// Error is the tagged error propagated between pipeline stages.
type Error struct {
	Kind Kind
	Code int
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports bad input detected before any I/O. The code is either
// CodeBadFileType or CodeChronology; malformed user-supplied dates use
// CodeUnexpected because the external contract has no code for them.
func Validation(code int, op string, err error) *Error {
	return &Error{Kind: KindInputValidation, Code: code, Op: op, Err: err}
}

// NoOverlap reports that the paired instruments share no positive-duration window.
func NoOverlap(op string) *Error {
	return &Error{Kind: KindOverlap, Code: CodeNoOverlap, Op: op, Err: ErrNoOverlap}
}

// IO reports a conversion, archive read or archive write failure.
func IO(op string, err error) *Error {
	return &Error{Kind: KindIOFailure, Code: CodeUnexpected, Op: op, Err: err}
}

// Stats reports a violated algorithmic precondition.
func Stats(op string, err error) *Error {
	return &Error{Kind: KindStatistics, Code: CodeUnexpected, Op: op, Err: err}
}

// CodeOf maps any error to its external result code. nil is success and
// anything unrecognised is an unexpected failure.
func CodeOf(err error) int {
	if err == nil {
		return CodeSuccess
	}

	var oe *Error
	if errors.As(err, &oe) {
		return oe.Code
	}

	switch {
	case errors.Is(err, ErrInvalidFileType):
		return CodeBadFileType
	case errors.Is(err, ErrChronology):
		return CodeChronology
	case errors.Is(err, ErrNoOverlap):
		return CodeNoOverlap
	default:
		return CodeUnexpected
	}
}

// KindOf returns the Kind of a tagged error, or 0 when err is not one.
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return 0
}
