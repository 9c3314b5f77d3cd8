// Package output renders extraction outcomes and routes them to a Sink.
package output

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/atikulmunna/grokline/internal/aggregator"
	errs "github.com/atikulmunna/grokline/internal/errors"
	"github.com/atikulmunna/grokline/internal/model"
)

// Format selects how matched records and stats are rendered.
type Format int

const (
	// FormatJSON renders one compact JSON object per line.
	FormatJSON Format = iota
	// FormatCSV renders a header line followed by quoted value rows.
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	default:
		return "json"
	}
}

// SelectFormat picks the format from the --json and --csv switches. Neither
// selects JSON; both is a configuration error.
func SelectFormat(jsonOut, csvOut bool) (Format, error) {
	switch {
	case jsonOut && csvOut:
		return FormatJSON, errs.Config("select format", "", errs.ErrFormatConflict)
	case csvOut:
		return FormatCSV, nil
	default:
		return FormatJSON, nil
	}
}

// Renderer turns outcomes into text lines and writes them to a Sink.
// Failed outcomes always go to the Sink's error channel as plain text.
type Renderer struct {
	format  Format
	sink    *Sink
	columns []string
}

// NewRenderer returns a Renderer writing format to sink.
func NewRenderer(format Format, sink *Sink) *Renderer {
	return &Renderer{format: format, sink: sink}
}

// Columns returns the CSV column order fixed by the first matched record,
// or nil before any record matched.
func (r *Renderer) Columns() []string {
	if r.columns == nil {
		return nil
	}
	return append([]string(nil), r.columns...)
}

// Render writes one outcome. The returned error is always a Sink failure; a
// record that cannot be serialized is reported on the error channel instead.
func (r *Renderer) Render(o model.Outcome) error {
	if !o.Matched() {
		return r.sink.WriteFailure(o.String())
	}

	switch r.format {
	case FormatCSV:
		return r.renderCSV(o.Fields())
	default:
		return r.renderJSON(o.Fields())
	}
}

// RenderError writes a per-line error to the error channel.
func (r *Renderer) RenderError(err error) error {
	return r.sink.WriteFailure(err.Error())
}

// RenderStats writes the end-of-run counters.
func (r *Renderer) RenderStats(s aggregator.Stats) error {
	switch r.format {
	case FormatCSV:
		if err := r.sink.WriteSuccess(csvLine([]string{"parsed", "failed"})); err != nil {
			return err
		}
		return r.sink.WriteSuccess(csvLine([]string{
			strconv.FormatUint(s.Parsed, 10),
			strconv.FormatUint(s.Failed, 10),
		}))
	default:
		line, err := MarshalLine(s)
		if err != nil {
			return r.sink.WriteFailure(errs.Serialization("render stats", err).Error())
		}
		return r.sink.WriteSuccess(line)
	}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func (r *Renderer) renderJSON(fields model.FieldMap) error {
	line, err := MarshalLine(fields)
	if err != nil {
		serr := errs.Serialization("render json", err)
		logrus.WithFields(logrus.Fields{
			"error": err,
		}).Debug("could not serialize record")
		return r.sink.WriteFailure(serr.Error())
	}
	return r.sink.WriteSuccess(line)
}

// MarshalLine encodes v as compact JSON without HTML escaping or a trailing
// newline.
func MarshalLine(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ---------------------------------------------------------------------------
// CSV
// ---------------------------------------------------------------------------

// renderCSV writes the header before the first record. Rows always follow
// the record's own field order; they are not re-aligned to the header when a
// later record has a different field set.
func (r *Renderer) renderCSV(fields model.FieldMap) error {
	if r.columns == nil {
		r.columns = fields.Names()
		if err := r.sink.WriteSuccess(csvLine(r.columns)); err != nil {
			return err
		}
	}
	return r.sink.WriteSuccess(csvLine(fields.Values()))
}

// csvLine double-quotes each value, doubling embedded quotes, and joins them
// with ", ".
func csvLine(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ", ")
}
