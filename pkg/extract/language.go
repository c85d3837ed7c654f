package extract

import (
	"context"
	"path/filepath"
	"strings"
)

// Language binds a file ecosystem to its analysis strategy. Each
// supported language supplies one Language value; the traversal
// dispatches on detected language and never needs to know which
// strategy sits behind the Extractor interface.
type Language struct {
	// Name is the language tag used in results, manifests, and reports
	// (e.g. "python", "csharp").
	Name string

	// Extensions are the lower-case file extensions this language owns,
	// including the dot (e.g. ".py").
	Extensions []string

	// NewExtractor builds the per-job extractor. For index-based
	// languages this is where the symbol index is built; warnings from
	// that phase (unreadable files, malformed declarations) are
	// returned alongside so they land in the run log.
	NewExtractor func(ctx context.Context, env *Env) (Extractor, []Warning, error)

	// Manifests returns the project-description readers for this
	// language (requirements.txt, pyproject.toml, *.csproj, ...).
	Manifests func() []ManifestReader
}

// Owns reports whether the language claims the given file path.
func (l *Language) Owns(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range l.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Registry is an ordered set of languages. Order matters only for the
// unlikely case of two languages claiming the same extension; the first
// registered wins.
type Registry []*Language

// Detect returns the language owning path, or nil when no registered
// language claims its extension. Files with no detected language are
// still included in a closure but contribute no edges.
func (reg Registry) Detect(path string) *Language {
	for _, l := range reg {
		if l.Owns(path) {
			return l
		}
	}
	return nil
}

// ManifestReaders collects every manifest reader across the registry.
func (reg Registry) ManifestReaders() []ManifestReader {
	var readers []ManifestReader
	for _, l := range reg {
		if l.Manifests != nil {
			readers = append(readers, l.Manifests()...)
		}
	}
	return readers
}
