package extract

import (
	"context"

	"github.com/carvekit/carve/pkg/ignore"
)

// Extractor turns one source file into its dependency references.
// Implementations are language-specific: an import-statement language
// resolves explicit module references against the project roots, while
// an index-based language resolves implicit type usage through a
// precomputed symbol index.
//
// Extractors are created once per job via Language.NewExtractor and are
// only ever called from the single-threaded traversal loop.
type Extractor interface {
	// Extract returns the references found in src. Recoverable
	// conditions (syntax errors, unresolved or ambiguous references)
	// are reported as warnings on the Extraction, not as errors; a
	// non-nil error aborts the whole run and should be reserved for
	// genuinely unexpected failures.
	Extract(ctx context.Context, path string, src []byte) (*Extraction, error)
}

// Extraction is the outcome of analyzing a single source file.
type Extraction struct {
	Local    []string  // absolute paths of resolved local targets
	External []Package // external package hints (name only; versions come from manifests)
	Warnings []Warning // per-file recoverable conditions
}

// Env is the immutable per-job context shared by extractors and manifest
// scanning. It is assembled once before traversal and never mutated, so
// multiple jobs can run independently in the same process.
type Env struct {
	Roots    []string             // resolved project roots, in priority order
	Ignore   *ignore.Filter       // consulted before any path is touched
	Declared map[string][]Package // language -> packages declared in project manifests
	Logf     func(string, ...any) // progress/debug callback (never nil after Run)
}

// DeclaredNames returns the set of declared package names for a language,
// used by extractors to decide whether an unresolved reference points at
// a known external package.
func (e *Env) DeclaredNames(lang string) map[string]bool {
	names := make(map[string]bool, len(e.Declared[lang]))
	for _, p := range e.Declared[lang] {
		names[p.Name] = true
	}
	return names
}

// ResolveVersion fills in the version of a usage hint from the project
// manifests. Hints that already carry a version, and packages no
// manifest declares, pass through unchanged.
func (e *Env) ResolveVersion(lang string, pkg Package) Package {
	if pkg.Version != "" {
		return pkg
	}
	for _, d := range e.Declared[lang] {
		if d.Name == pkg.Name {
			pkg.Version = d.Version
			break
		}
	}
	return pkg
}
