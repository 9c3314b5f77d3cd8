// Package errors classifies the failures grokline can hit while setting up
// and running a line pipeline.
//
// Setup failures (configuration, pattern compilation, output conflicts) and
// I/O failures are fatal. A line that does not match the pattern or trips the
// matcher, or a matched record that cannot be serialized, is recoverable: it
// is reported through the error channel and the run continues.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the classification of an error for handling purposes.
type Kind int

const (
	// KindConfig is an invalid option combination or patterns directory.
	KindConfig Kind = iota
	// KindCompile is a pattern template or alias that fails to compile.
	KindCompile
	// KindDestinationConflict is an output path (or its error sibling) that already exists.
	KindDestinationConflict
	// KindIO is a failure opening, reading or writing a file or stream.
	KindIO
	// KindNoMatch is a line that did not match the compiled pattern.
	KindNoMatch
	// KindSerialization is a matched record that could not be rendered.
	KindSerialization
	// KindExtract is a pattern library failure while matching one line.
	KindExtract
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindCompile:
		return "compile"
	case KindDestinationConflict:
		return "destination conflict"
	case KindIO:
		return "io"
	case KindNoMatch:
		return "no match"
	case KindSerialization:
		return "serialization"
	case KindExtract:
		return "extract"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	ErrNotDirectory      = errors.New("not a directory")
	ErrMalformedAlias    = errors.New("malformed pattern definition")
	ErrEmptyPattern      = errors.New("pattern is empty")
	ErrFormatConflict    = errors.New("select either JSON or CSV output, not both")
	ErrNoMatches         = errors.New("did not match any files")
	ErrStdinMixed        = errors.New("stdin (-) cannot be combined with file inputs")
	ErrDestinationExists = errors.New("file already exists")
	ErrInvalidUTF8       = errors.New("value is not valid UTF-8")
)

// Error wraps an underlying error with its classification and the
// operation and path it occurred on.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Path != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	default:
		return e.Err.Error()
	}
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op, path string, err error) *Error {
	if err == nil {
		err = errors.New(kind.String())
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Config classifies err as a configuration error.
func Config(op, path string, err error) error { return newError(KindConfig, op, path, err) }

// Compile classifies err as a pattern compilation error.
func Compile(op, pattern string, err error) error { return newError(KindCompile, op, pattern, err) }

// Conflict reports output paths that already exist.
func Conflict(op string, paths ...string) error {
	return newError(KindDestinationConflict, op, strings.Join(paths, ", "), ErrDestinationExists)
}

// IO classifies err as an I/O error on path.
func IO(op, path string, err error) error { return newError(KindIO, op, path, err) }

// NoMatch reports a line that did not match the pattern.
func NoMatch(line string) error { return lineFailure(KindNoMatch, "no match", line) }

// Extract reports a matcher failure on line. Like NoMatch it only affects
// that line.
func Extract(reason, line string) error { return lineFailure(KindExtract, reason, line) }

// lineFailure renders the line verbatim between quotes.
func lineFailure(kind Kind, reason, line string) error {
	return newError(kind, "", "", fmt.Errorf("%s against data: \"%s\"", reason, line))
}

// Serialization classifies err as a rendering failure.
func Serialization(op string, err error) error { return newError(KindSerialization, op, "", err) }

// KindOf returns the classification of err, if it has one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsFatal reports whether err should stop the run. Per-line failures
// (NoMatch, Extract, Serialization) are not; unclassified errors are.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	k, ok := KindOf(err)
	if !ok {
		return true
	}
	switch k {
	case KindNoMatch, KindExtract, KindSerialization:
		return false
	default:
		return true
	}
}
