package extract

import (
	"slices"
	"strings"
)

// Package identifies an external dependency by name, with a version when
// a project manifest declared one.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// String renders the package in manifest form (name==version).
func (p Package) String() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "==" + p.Version
}

// File is one source file included in the closure.
type File struct {
	Path    string   `json:"path"`              // absolute path
	Rel     string   `json:"rel"`               // output-relative path (against the owning root)
	Root    string   `json:"root,omitempty"`    // owning project root (first match wins)
	Lang    string   `json:"lang,omitempty"`    // detected language tag
	Entries []string `json:"entries,omitempty"` // entry points this file was first reached from
}

// Edge is a directed local dependency between two included files.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result is the outcome of a run: the deduplicated closure, the external
// packages per language, the local dependency edges, and every warning
// accumulated along the way. All mutation happens on the single-threaded
// traversal loop; accessors return deterministic orderings so identical
// jobs produce identical results.
type Result struct {
	files     map[string]*File
	order     []string // insertion order of file paths
	externals map[string][]Package
	extIndex  map[string]map[string]int // lang -> name -> index into externals[lang]
	edges     []Edge
	warnings  []Warning
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{
		files:     make(map[string]*File),
		externals: make(map[string][]Package),
		extIndex:  make(map[string]map[string]int),
	}
}

// AddFile records an included file. Repeated additions of the same path
// are ignored: a file is attributed to the entry that reached it first.
func (r *Result) AddFile(f *File) {
	if _, ok := r.files[f.Path]; ok {
		return
	}
	r.files[f.Path] = f
	r.order = append(r.order, f.Path)
}

// File returns the included file for path, if any.
func (r *Result) File(path string) (*File, bool) {
	f, ok := r.files[path]
	return f, ok
}

// Len returns the number of included files.
func (r *Result) Len() int { return len(r.files) }

// AddPackage records an external package for a language, deduplicating
// by name. When two occurrences disagree on version, the first observed
// version wins and the conflict is recorded as a warning, never silently
// dropped. An occurrence that supplies a version for a previously
// version-less entry fills it in without a warning.
func (r *Result) AddPackage(lang string, pkg Package) {
	idx, ok := r.extIndex[lang]
	if !ok {
		idx = make(map[string]int)
		r.extIndex[lang] = idx
	}

	i, seen := idx[pkg.Name]
	if !seen {
		idx[pkg.Name] = len(r.externals[lang])
		r.externals[lang] = append(r.externals[lang], pkg)
		return
	}

	existing := &r.externals[lang][i]
	switch {
	case pkg.Version == "" || pkg.Version == existing.Version:
		// Nothing new.
	case existing.Version == "":
		existing.Version = pkg.Version
	default:
		r.AddWarning(Warningf(WarnVersionConflict, "",
			"package %s: keeping version %s, ignoring %s", pkg.Name, existing.Version, pkg.Version))
	}
}

// AddEdge records a local dependency edge for graph export.
func (r *Result) AddEdge(from, to string) {
	r.edges = append(r.edges, Edge{From: from, To: to})
}

// AddWarning appends a warning to the run log.
func (r *Result) AddWarning(w Warning) {
	r.warnings = append(r.warnings, w)
}

// AddWarnings appends a batch of warnings.
func (r *Result) AddWarnings(ws []Warning) {
	r.warnings = append(r.warnings, ws...)
}

// Files returns the included files sorted by relative path, then
// absolute path for stability when relative paths collide.
func (r *Result) Files() []*File {
	out := make([]*File, 0, len(r.files))
	for _, path := range r.order {
		out = append(out, r.files[path])
	}
	slices.SortFunc(out, func(a, b *File) int {
		if c := strings.Compare(a.Rel, b.Rel); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

// Languages returns the languages with at least one external package,
// sorted by name.
func (r *Result) Languages() []string {
	langs := make([]string, 0, len(r.externals))
	for lang := range r.externals {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

// Packages returns the external packages recorded for a language,
// sorted by name.
func (r *Result) Packages(lang string) []Package {
	out := slices.Clone(r.externals[lang])
	slices.SortFunc(out, func(a, b Package) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Edges returns the recorded dependency edges sorted by source then
// target path.
func (r *Result) Edges() []Edge {
	out := slices.Clone(r.edges)
	slices.SortFunc(out, func(a, b Edge) int {
		if c := strings.Compare(a.From, b.From); c != 0 {
			return c
		}
		return strings.Compare(a.To, b.To)
	})
	return out
}

// Warnings returns the accumulated warnings sorted by kind, path, and
// detail so repeated runs compare equal.
func (r *Result) Warnings() []Warning {
	out := slices.Clone(r.warnings)
	slices.SortFunc(out, func(a, b Warning) int {
		if c := strings.Compare(string(a.Kind), string(b.Kind)); c != 0 {
			return c
		}
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Detail, b.Detail)
	})
	return out
}

// CountByEntry returns how many included files are attributed to each
// entry point.
func (r *Result) CountByEntry() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.files {
		for _, e := range f.Entries {
			counts[e]++
		}
	}
	return counts
}
