// Package pipeline wires a line source, the grok extractor and a renderer
// into one sequential run.
package pipeline

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/atikulmunna/grokline/internal/aggregator"
	errs "github.com/atikulmunna/grokline/internal/errors"
	"github.com/atikulmunna/grokline/internal/output"
	"github.com/atikulmunna/grokline/internal/parser"
	"github.com/atikulmunna/grokline/internal/source"
)

// Options describes one run.
type Options struct {
	Pattern     string
	PatternsDir string
	NoDefaults  bool
	// Inputs are files or globs; empty or "-" reads stdin.
	Inputs []string
	// Output is the data file path; empty writes to stdout and stderr.
	Output string
	Format output.Format
}

// LineReader yields lines until io.EOF.
type LineReader interface {
	Next() (string, error)
}

// Pipeline holds everything a run needs once setup has succeeded.
type Pipeline struct {
	src       *source.Source
	extractor *parser.Extractor
	renderer  *output.Renderer
}

// New performs every setup step: it compiles the pattern, checks the output
// destination and opens the input. The first failure is returned and nothing
// has been written at that point.
func New(opts Options, stdin io.Reader, stdout, stderr io.Writer) (*Pipeline, error) {
	ex, err := parser.NewExtractor(parser.Options{
		Pattern:     opts.Pattern,
		PatternsDir: opts.PatternsDir,
		NoDefaults:  opts.NoDefaults,
	})
	if err != nil {
		return nil, err
	}

	sink, err := output.NewSink(opts.Output, stdout, stderr)
	if err != nil {
		return nil, err
	}

	src, err := source.Open(opts.Inputs, stdin)
	if err != nil {
		return nil, err
	}

	data, errPath := sink.Paths()
	logrus.WithFields(logrus.Fields{
		"pattern": opts.Pattern,
		"inputs":  opts.Inputs,
		"output":  data,
		"errors":  errPath,
		"format":  opts.Format.String(),
	}).Debug("pipeline ready")

	return &Pipeline{
		src:       src,
		extractor: ex,
		renderer:  output.NewRenderer(opts.Format, sink),
	}, nil
}

// Run processes every input line and then writes the stats. The input is
// closed when Run returns.
func (p *Pipeline) Run() (aggregator.Stats, error) {
	stats, err := Process(p.src, p.extractor, p.renderer)
	if cerr := p.src.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return stats, err
}

// Process reads r until io.EOF, extracting and rendering each line, then
// renders the stats once. Lines that fail to match never stop the loop, and
// neither does any other per-line error; it is written to the error channel.
// A fatal error (I/O on the input or the sink) ends the run.
func Process(r LineReader, ex *parser.Extractor, rd *output.Renderer) (aggregator.Stats, error) {
	var stats aggregator.Stats

	for {
		line, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil {
			err = rd.Render(ex.Extract(line, &stats))
		}
		if err != nil {
			if errs.IsFatal(err) {
				return stats, err
			}
			logrus.WithFields(logrus.Fields{
				"error": err,
			}).Debug("skipping line")
			if err := rd.RenderError(err); err != nil {
				return stats, err
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"parsed": stats.Parsed,
		"failed": stats.Failed,
	}).Debug("input exhausted")

	return stats, rd.RenderStats(stats)
}
