package output

import (
	"fmt"
	"io"
	"os"

	errs "github.com/atikulmunna/grokline/internal/errors"
)

// ErrorSuffix is appended to a data file path to name its error file.
const ErrorSuffix = ".err"

type sinkKind int

const (
	consoleSink sinkKind = iota
	fileSink
)

// Sink routes rendered lines to a success channel and an error channel.
//
// A console Sink writes to two writers (normally stdout and stderr). A file
// Sink appends to a data file and its sibling error file, opening the file
// for each write and closing it before returning.
type Sink struct {
	kind    sinkKind
	stdout  io.Writer
	stderr  io.Writer
	path    string
	errPath string
}

// NewConsoleSink returns a Sink writing successes to stdout and failures to
// stderr.
func NewConsoleSink(stdout, stderr io.Writer) *Sink {
	return &Sink{kind: consoleSink, stdout: stdout, stderr: stderr}
}

// NewFileSink returns a Sink appending to path and path+ErrorSuffix. Neither
// file may exist yet; nothing is created until the first write.
func NewFileSink(path string) (*Sink, error) {
	errPath := path + ErrorSuffix

	var conflicts []string
	for _, p := range []string{path, errPath} {
		exists, err := pathExists(p)
		if err != nil {
			return nil, errs.IO("check output", p, err)
		}
		if exists {
			conflicts = append(conflicts, p)
		}
	}
	if len(conflicts) > 0 {
		return nil, errs.Conflict("create output", conflicts...)
	}

	return &Sink{kind: fileSink, path: path, errPath: errPath}, nil
}

// NewSink returns a file Sink for path, or a console Sink when path is empty.
func NewSink(path string, stdout, stderr io.Writer) (*Sink, error) {
	if path == "" {
		return NewConsoleSink(stdout, stderr), nil
	}
	return NewFileSink(path)
}

// Paths returns the data and error file paths. Both are empty for a console
// Sink.
func (s *Sink) Paths() (data, errPath string) {
	return s.path, s.errPath
}

// WriteSuccess writes text and a newline to the success channel.
func (s *Sink) WriteSuccess(text string) error {
	switch s.kind {
	case fileSink:
		return appendLine(s.path, text)
	default:
		return writeLine(s.stdout, "stdout", text)
	}
}

// WriteFailure writes text and a newline to the error channel.
func (s *Sink) WriteFailure(text string) error {
	switch s.kind {
	case fileSink:
		return appendLine(s.errPath, text)
	default:
		return writeLine(s.stderr, "stderr", text)
	}
}

func writeLine(w io.Writer, name, text string) error {
	if _, err := io.WriteString(w, text+"\n"); err != nil {
		return errs.IO("write", name, err)
	}
	return nil
}

// appendLine opens path for appending, writes one line and closes it again.
func appendLine(path, text string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errs.IO("open output", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errs.IO("close output", path, cerr)
		}
	}()

	if _, err := f.WriteString(text + "\n"); err != nil {
		return errs.IO("write output", path, err)
	}
	return nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("stat: %w", err)
	}
}
