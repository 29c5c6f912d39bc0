package document

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves each argument to a list of files. Arguments that name an
// existing file are kept as-is; anything else is treated as a glob pattern,
// with ** matching across directories. The result is sorted and free of
// duplicates. A pattern that matches nothing is an error.
func Expand(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			out = append(out, arg)
			continue
		}
		matches, err := expandGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("expanding glob pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, &LoadError{Code: ErrCodeNoMatch, Message: fmt.Sprintf("no files match %q", arg)}
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// expandGlob uses doublestar for ** patterns and filepath.Glob otherwise.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	}
	return filepath.Glob(pattern)
}

// Match reports whether name matches the doublestar pattern. An empty
// pattern matches everything.
func Match(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
