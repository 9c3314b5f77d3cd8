// Package parser turns raw lines into field maps by matching them against a
// grok pattern.
package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/vjeantet/grok"

	"github.com/atikulmunna/grokline/internal/aggregator"
	errs "github.com/atikulmunna/grokline/internal/errors"
	"github.com/atikulmunna/grokline/internal/model"
)

// Options configures an Extractor.
type Options struct {
	// Pattern is the grok template matched against every line.
	Pattern string
	// PatternsDir, if set, is a directory of alias definition files that
	// extend or override the fragment catalog.
	PatternsDir string
	// NoDefaults starts from an empty catalog instead of the built-in
	// fragments.
	NoDefaults bool
}

// bareReference matches a fragment reference with no field name, such as
// %{client}.
var bareReference = regexp.MustCompile(`%\{(\w+)\}`)

// nameReferences rewrites every bare %{NAME} in template to %{NAME:NAME}.
// Only named references are captured, so a bare reference in the template
// itself still yields a field while fragments nested inside the catalog do
// not.
func nameReferences(template string) string {
	return bareReference.ReplaceAllString(template, "%{$1:$1}")
}

// Extractor matches lines against one compiled grok pattern.
// It is safe for concurrent use; the Stats passed to Extract are not.
type Extractor struct {
	g        *grok.Grok
	pattern  string
	compiled string
}

// NewExtractor builds the fragment catalog and compiles opts.Pattern.
// Every setup problem is reported here, before any line is read.
func NewExtractor(opts Options) (*Extractor, error) {
	if strings.TrimSpace(opts.Pattern) == "" {
		return nil, errs.Config("compile pattern", "", errs.ErrEmptyPattern)
	}

	var aliases AliasTable
	if opts.PatternsDir != "" {
		var err error
		if aliases, err = LoadAliases(opts.PatternsDir); err != nil {
			return nil, err
		}
	}

	g, err := grok.NewWithConfig(&grok.Config{
		SkipDefaultPatterns: opts.NoDefaults,
		NamedCapturesOnly:   true,
	})
	if err != nil {
		return nil, errs.Compile("load default patterns", "", err)
	}
	if len(aliases) > 0 {
		if err := g.AddPatternsFromMap(aliases); err != nil {
			return nil, errs.Compile("add pattern aliases", opts.PatternsDir, err)
		}
	}

	compiled := nameReferences(opts.Pattern)

	// Match compiles and caches the pattern.
	if _, err := g.Match(compiled, ""); err != nil {
		logrus.WithFields(logrus.Fields{
			"pattern": opts.Pattern,
		}).Debug("could not compile pattern")
		return nil, errs.Compile("compile pattern", opts.Pattern, err)
	}

	return &Extractor{g: g, pattern: opts.Pattern, compiled: compiled}, nil
}

// Pattern returns the grok template.
func (e *Extractor) Pattern() string { return e.pattern }

// Extract matches line, trimmed at the end, against the pattern and records
// the result in stats. A line that does not match is a failed Outcome, not
// an error.
func (e *Extractor) Extract(line string, stats *aggregator.Stats) model.Outcome {
	text := strings.TrimRightFunc(line, unicode.IsSpace)

	ok, err := e.g.Match(e.compiled, text)
	if err == nil && !ok {
		logrus.WithFields(logrus.Fields{
			"line": text,
		}).Debug("No matches for grok pattern")
		stats.RecordFailed()
		return model.Failed(model.ReasonNoMatch, line)
	}

	var captures map[string]string
	if err == nil {
		captures, err = e.g.Parse(e.compiled, text)
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"line":  text,
			"error": err,
		}).Debug("grok pattern failed on line")
		stats.RecordFailed()
		return model.Failed(err.Error(), line)
	}

	stats.RecordParsed()
	return model.Matched(model.NewFieldMap(captures))
}
