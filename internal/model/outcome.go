package model

import (
	"fmt"
	"strings"
	"unicode"

	errs "github.com/atikulmunna/grokline/internal/errors"
)

// ReasonNoMatch is the failure reason for a line the pattern did not match.
const ReasonNoMatch = "no match"

// Outcome is the result of extracting one line: either a FieldMap or a
// failure carrying the reason and the raw line.
type Outcome struct {
	matched bool
	fields  FieldMap
	reason  string
	raw     string
}

// Matched returns a successful Outcome.
func Matched(fields FieldMap) Outcome {
	return Outcome{matched: true, fields: fields}
}

// Failed returns a failed Outcome for raw.
func Failed(reason, raw string) Outcome {
	return Outcome{reason: reason, raw: raw}
}

// Matched reports whether the line matched.
func (o Outcome) Matched() bool { return o.matched }

// Fields returns the extracted fields. It is empty for a failed Outcome.
func (o Outcome) Fields() FieldMap { return o.fields }

// Reason returns the failure reason. It is empty for a matched Outcome.
func (o Outcome) Reason() string { return o.reason }

// Raw returns the line a failed Outcome was produced from.
func (o Outcome) Raw() string { return o.raw }

// String renders a failure as `<reason> against data: "<line>"` with the
// line trimmed at the end.
func (o Outcome) String() string {
	if o.matched {
		return fmt.Sprintf("matched %d fields", o.fields.Len())
	}
	return o.Err().Error()
}

// Err returns the failure as a classified error, or nil for a match.
func (o Outcome) Err() error {
	if o.matched {
		return nil
	}
	line := strings.TrimRightFunc(o.raw, unicode.IsSpace)
	if o.reason == ReasonNoMatch {
		return errs.NoMatch(line)
	}
	return errs.Extract(o.reason, line)
}
