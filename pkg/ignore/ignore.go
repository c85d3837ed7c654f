// Package ignore implements path filtering for extraction jobs.
//
// A Filter combines two pattern sets: directory names matched against any
// path segment (e.g. "venv", "__pycache__", "bin") and file glob patterns
// matched against the final segment (e.g. "*.log", ".DS_Store"). Every
// component of the pipeline consults the filter before a path is opened,
// indexed, enqueued, or copied, so an ignored path never appears anywhere
// in a result.
package ignore

import (
	"path/filepath"
	"strings"

	zglob "github.com/mattn/go-zglob"
)

// Filter is a pure predicate over paths. The zero value ignores nothing.
// A Filter is immutable after construction and safe for concurrent use.
type Filter struct {
	dirs  map[string]bool
	globs []string
}

// New creates a Filter from directory names and file glob patterns.
// Directory names match any path segment exactly; glob patterns match
// the final path segment using zglob syntax (which includes ** support).
func New(dirs, globs []string) *Filter {
	f := &Filter{dirs: make(map[string]bool, len(dirs))}
	for _, d := range dirs {
		d = strings.TrimSpace(d)
		if d != "" {
			f.dirs[d] = true
		}
	}
	for _, g := range globs {
		g = strings.TrimSpace(g)
		if g != "" {
			f.globs = append(f.globs, g)
		}
	}
	return f
}

// Ignored reports whether path matches any directory or file pattern.
func (f *Filter) Ignored(path string) bool {
	if f == nil || (len(f.dirs) == 0 && len(f.globs) == 0) {
		return false
	}

	clean := filepath.ToSlash(filepath.Clean(path))
	segments := strings.Split(clean, "/")
	for _, seg := range segments {
		if f.dirs[seg] {
			return true
		}
	}

	base := segments[len(segments)-1]
	for _, g := range f.globs {
		ok, err := zglob.Match(g, base)
		if err != nil {
			// Invalid pattern: surfaced at job validation, never here.
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// Validate checks every glob pattern for syntax errors. Returns the first
// invalid pattern so jobs can fail fast instead of silently matching nothing.
func (f *Filter) Validate() (string, bool) {
	for _, g := range f.globs {
		if _, err := zglob.Match(g, "probe"); err != nil {
			return g, false
		}
	}
	return "", true
}
