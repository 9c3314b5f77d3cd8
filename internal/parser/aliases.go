package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	errs "github.com/atikulmunna/grokline/internal/errors"
)

const maxDefinitionLine = 1024 * 1024

// AliasTable maps a fragment name to its definition.
type AliasTable map[string]string

// Names returns the alias names in ascending order.
func (t AliasTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadAliases reads every regular file directly inside dir. Each non-blank
// line is "<name> <definition>", split at the first space. Files are read in
// name order and a later definition of a name replaces an earlier one.
func LoadAliases(dir string) (AliasTable, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errs.Config("load patterns", dir, err)
	}
	if !info.IsDir() {
		return nil, errs.Config("load patterns", dir, errs.ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.IO("read patterns directory", dir, err)
	}

	aliases := make(AliasTable)
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if !entry.Type().IsRegular() {
			logrus.WithFields(logrus.Fields{
				"path": path,
			}).Debug("skipping non-regular entry in patterns directory")
			continue
		}
		if err := readAliasFile(path, aliases); err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"dir":     dir,
		"aliases": len(aliases),
	}).Debug("loaded pattern aliases")
	return aliases, nil
}

// readAliasFile adds the definitions in path to aliases.
func readAliasFile(path string, aliases AliasTable) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.IO("open patterns file", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxDefinitionLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		name, definition, ok := splitDefinition(line)
		if !ok {
			return errs.Config("load patterns", fmt.Sprintf("%s:%d", path, lineNo), errs.ErrMalformedAlias)
		}
		if prev, dup := aliases[name]; dup && prev != definition {
			logrus.WithFields(logrus.Fields{
				"name": name,
				"file": path,
			}).Debug("pattern alias redefined")
		}
		aliases[name] = definition
	}
	if err := scanner.Err(); err != nil {
		return errs.IO("read patterns file", path, err)
	}
	return nil
}

// splitDefinition splits a line at its first space into name and definition,
// trimming leading whitespace from the definition.
func splitDefinition(line string) (name, definition string, ok bool) {
	name, rest, found := strings.Cut(line, " ")
	if !found || name == "" {
		return "", "", false
	}
	return name, strings.TrimLeftFunc(rest, unicode.IsSpace), true
}
