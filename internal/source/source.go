// Package source reads raw lines from standard input or from an ordered list
// of files as one logical stream.
package source

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	errs "github.com/atikulmunna/grokline/internal/errors"
)

// Stdin is the input name that selects standard input.
const Stdin = "-"

// Kind selects where a Source reads from.
type Kind int

const (
	// Console reads standard input until end of stream.
	Console Kind = iota
	// Files reads a list of files one after another.
	Files
)

// Source yields lines lazily, exactly once, in read order.
//
// A Files source consumes its paths last to first: for [a, b, c] every line
// of c is returned before b is opened, and every line of b before a.
type Source struct {
	kind      Kind
	remaining []string
	path      string
	reader    *bufio.Reader
	closer    io.Closer
}

// NewConsole returns a Source reading lines from r.
func NewConsole(r io.Reader) *Source {
	return &Source{
		kind:   Console,
		path:   Stdin,
		reader: bufio.NewReader(r),
	}
}

// NewFiles returns a Source over paths. The last path is opened immediately;
// an empty list gives a Source that is already exhausted.
func NewFiles(paths []string) (*Source, error) {
	s := &Source{
		kind:      Files,
		remaining: append([]string(nil), paths...),
	}
	if len(s.remaining) == 0 {
		return s, nil
	}
	if err := s.openNext(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open returns a Source for the given input arguments. No inputs, or the
// single input "-", reads stdin; anything else is expanded as globs.
func Open(inputs []string, stdin io.Reader) (*Source, error) {
	if len(inputs) == 0 || (len(inputs) == 1 && inputs[0] == Stdin) {
		return NewConsole(stdin), nil
	}
	for _, in := range inputs {
		if in == Stdin {
			return nil, errs.Config("open input", Stdin, errs.ErrStdinMixed)
		}
	}

	paths, err := Expand(inputs)
	if err != nil {
		return nil, err
	}
	return NewFiles(paths)
}

// Path returns the file currently being read, "-" for the console, or ""
// once the Source is exhausted.
func (s *Source) Path() string { return s.path }

// Next returns the next line without its line terminator. A final line
// without a terminator is still returned. Next returns io.EOF when every
// input has been read; any other error is an I/O failure.
func (s *Source) Next() (string, error) {
	for {
		if s.reader == nil {
			return "", io.EOF
		}

		line, err := s.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", errs.IO("read input", s.path, err)
		}
		if len(line) > 0 {
			return trimTerminator(line), nil
		}

		// Current input is exhausted.
		if err := s.closeCurrent(); err != nil {
			return "", err
		}
		if s.kind == Console || len(s.remaining) == 0 {
			return "", io.EOF
		}
		if err := s.openNext(); err != nil {
			return "", err
		}
	}
}

// Close releases the file currently being read. It is safe to call more
// than once.
func (s *Source) Close() error {
	s.remaining = nil
	return s.closeCurrent()
}

// openNext pops the last remaining path and makes it current.
func (s *Source) openNext() error {
	last := len(s.remaining) - 1
	path := s.remaining[last]
	s.remaining = s.remaining[:last]

	r, closer, err := openFile(path)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"path":      path,
		"remaining": len(s.remaining),
	}).Debug("reading input file")

	s.path = path
	s.reader = bufio.NewReader(r)
	s.closer = closer
	return nil
}

func (s *Source) closeCurrent() error {
	closer, path := s.closer, s.path
	s.reader, s.closer, s.path = nil, nil, ""
	if closer == nil {
		return nil
	}
	if err := closer.Close(); err != nil {
		return errs.IO("close input", path, err)
	}
	return nil
}

func trimTerminator(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
