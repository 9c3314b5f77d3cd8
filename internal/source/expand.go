package source

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"

	errs "github.com/atikulmunna/grokline/internal/errors"
)

// Expand resolves each input pattern to the files it matches and returns the
// matches in argument order. Recursive patterns like /var/log/**/*.log are
// supported. A pattern that matches nothing is an error.
func Expand(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			if errors.Is(err, doublestar.ErrBadPattern) {
				return nil, errs.Config("expand input", pattern, err)
			}
			return nil, errs.IO("expand input", pattern, err)
		}
		if len(matches) == 0 {
			return nil, errs.Config("expand input", pattern, errs.ErrNoMatches)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
