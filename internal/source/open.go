package source

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	errs "github.com/atikulmunna/grokline/internal/errors"
)

// openFile opens path for reading, decompressing .gz and .zst files.
func openFile(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errs.IO("open input", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, errs.IO("open gzip input", path, err)
		}
		return zr, closers{zr, f}, nil

	case ".zst", ".zstd":
		dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			f.Close()
			return nil, nil, errs.IO("open zstd input", path, err)
		}
		rc := dec.IOReadCloser()
		return rc, closers{rc, f}, nil

	default:
		return f, f, nil
	}
}

// closers closes every element in order and reports all failures.
type closers []io.Closer

func (cs closers) Close() error {
	var errList []error
	for _, c := range cs {
		if err := c.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
