// Package csharp implements the index-based extraction strategy.
//
// C# files rarely declare per-file dependencies: a type is used simply
// by naming it, and the compiler binds the name through project-wide
// namespaces. Extraction therefore runs in two phases. First a
// concurrent indexing pass scans every source file under the project
// roots for type declarations, producing a read-only symbol index.
// Then, for each visited file, a usage scan finds the identifiers that
// denote a dependency (construction, inheritance, generic arguments,
// attributes, namespace imports) and resolves them through the index.
package csharp

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/carvekit/carve/pkg/extract"
)

// Language is the csharp binding for the extraction engine.
var Language = &extract.Language{
	Name:         "csharp",
	Extensions:   []string{".cs"},
	NewExtractor: newExtractor,
	Manifests: func() []extract.ManifestReader {
		return []extract.ManifestReader{&Csproj{}}
	},
}

var (
	// usageRE matches the identifier positions that denote a dependency:
	// object construction, base lists, typeof expressions, generic
	// arguments, and attribute usage. Qualified names keep their dots so
	// the namespace prefix can be tested against declared packages.
	usageRE = regexp.MustCompile(`(?:new\s+|:\s*|typeof\s*\(|<|\[)\s*([A-Z][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)`)

	// usingRE matches namespace imports. Alias directives (using X = ...)
	// are excluded: they bind a name, not a namespace.
	usingRE = regexp.MustCompile(`(?m)^\s*using\s+(?:static\s+)?([A-Za-z_][A-Za-z0-9_.]*)\s*;`)
)

type csExtractor struct {
	env      *extract.Env
	index    *Index
	declared []string // declared package names, sorted for deterministic matching
}

// newExtractor builds the symbol index for the whole job. Index-phase
// failures on individual files come back as warnings; the index itself
// is immutable from here on.
func newExtractor(ctx context.Context, env *extract.Env) (extract.Extractor, []extract.Warning, error) {
	ix, warnings, err := BuildIndex(ctx, env.Roots, env.Ignore)
	if err != nil {
		return nil, nil, err
	}
	env.Logf("symbol index ready: %d distinct names", ix.Size())

	names := env.DeclaredNames("csharp")
	declared := make([]string, 0, len(names))
	for name := range names {
		declared = append(declared, name)
	}
	sort.Strings(declared)

	return &csExtractor{env: env, index: ix, declared: declared}, warnings, nil
}

// Extract resolves the type usages in src through the symbol index.
func (e *csExtractor) Extract(_ context.Context, path string, src []byte) (*extract.Extraction, error) {
	out := &extract.Extraction{}

	usings := fileUsings(src)
	usingSet := make(map[string]bool, len(usings))
	for _, u := range usings {
		usingSet[u] = true
	}

	// Namespace imports are themselves dependency references: a using
	// of a declared package's namespace marks that package as used.
	seenExternal := make(map[string]bool)
	for _, u := range usings {
		if pkg, ok := matchDeclared(u, e.declared); ok && !seenExternal[pkg] {
			seenExternal[pkg] = true
			out.External = append(out.External, extract.Package{Name: pkg})
		}
	}

	seenLocal := make(map[string]bool)
	warned := make(map[string]bool)
	for _, name := range usageNames(src) {
		base, qualifier := splitQualified(name)

		candidates, selfOnly := e.lookup(base, path)
		switch {
		case selfOnly:
			// Defined in the file under analysis; not a dependency.

		case len(candidates) == 1:
			e.addLocal(out, seenLocal, candidates[0].File)

		case len(candidates) > 1:
			chosen, ambiguous := disambiguate(candidates, qualifier, usingSet)
			e.addLocal(out, seenLocal, chosen.File)
			if ambiguous && !warned[base] {
				warned[base] = true
				out.Warnings = append(out.Warnings, extract.Warningf(extract.WarnAmbiguous, path,
					"type %s matches multiple files: %s; using %s", base, candidateList(candidates), chosen.File))
			}

		default:
			e.resolveExternal(out, path, name, base, qualifier, usingSet, seenExternal, warned)
		}
	}

	return out, nil
}

// lookup returns index entries for name defined outside the current
// file. A type defined only in the file being analyzed is not a
// dependency; selfOnly reports that case so it is not mistaken for an
// unresolved reference.
func (e *csExtractor) lookup(name, path string) (candidates []Symbol, selfOnly bool) {
	all := e.index.Lookup(name)
	for _, s := range all {
		if s.File != path {
			candidates = append(candidates, s)
		}
	}
	return candidates, len(all) > 0 && len(candidates) == 0
}

func (e *csExtractor) addLocal(out *extract.Extraction, seen map[string]bool, file string) {
	if seen[file] {
		return
	}
	seen[file] = true
	out.Local = append(out.Local, file)
}

// resolveExternal handles the zero-match case: the identifier belongs
// either to a declared external package, to the framework, or to
// nothing we can name (which is worth a warning).
func (e *csExtractor) resolveExternal(out *extract.Extraction, path, name, base, qualifier string,
	usingSet map[string]bool, seenExternal, warned map[string]bool) {

	if qualifier != "" {
		if pkg, ok := matchDeclared(qualifier, e.declared); ok {
			if !seenExternal[pkg] {
				seenExternal[pkg] = true
				out.External = append(out.External, extract.Package{Name: pkg})
			}
			return
		}
		if isFrameworkNamespace(qualifier) {
			return
		}
	} else {
		if isFrameworkType(base) {
			return
		}
		// A bare name binds through the file's usings. When one of them
		// belongs to a declared package, attribute the usage there
		// rather than flagging it; the using already emitted the
		// package above, so nothing further is recorded.
		for u := range usingSet {
			if _, ok := matchDeclared(u, e.declared); ok {
				return
			}
		}
		if allFrameworkUsings(usingSet) && len(usingSet) > 0 {
			return
		}
	}

	if !warned[name] {
		warned[name] = true
		out.Warnings = append(out.Warnings, extract.Warningf(extract.WarnUnresolved, path,
			"reference %s matches no indexed type and no declared package", name))
	}
}

// disambiguate applies the documented tie-break: prefer the unique
// candidate whose namespace appears in the file's namespace imports (or
// matches an explicit qualifier); otherwise fall back to the first
// indexed entry and report the ambiguity.
func disambiguate(candidates []Symbol, qualifier string, usingSet map[string]bool) (Symbol, bool) {
	var preferred []Symbol
	for _, c := range candidates {
		if c.Namespace == "" {
			continue
		}
		if c.Namespace == qualifier || usingSet[c.Namespace] {
			preferred = append(preferred, c)
		}
	}
	if len(preferred) == 1 {
		return preferred[0], false
	}
	return candidates[0], true
}

// candidateList names every candidate file for an ambiguity warning,
// in index order, which is already sorted and therefore deterministic.
func candidateList(candidates []Symbol) string {
	files := make([]string, len(candidates))
	for i, c := range candidates {
		files[i] = c.File
	}
	return strings.Join(files, ", ")
}

// usageNames returns the dependency-denoting identifiers in src, in
// order of first appearance.
func usageNames(src []byte) []string {
	matches := usageRE.FindAllSubmatch(src, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := string(m[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// fileUsings returns the namespaces imported by src, in order.
func fileUsings(src []byte) []string {
	matches := usingRE.FindAllSubmatch(src, -1)
	seen := make(map[string]bool, len(matches))
	usings := make([]string, 0, len(matches))
	for _, m := range matches {
		ns := string(m[1])
		if !seen[ns] {
			seen[ns] = true
			usings = append(usings, ns)
		}
	}
	return usings
}

// splitQualified splits "Ns.Sub.Type" into ("Type", "Ns.Sub"). Bare
// names return an empty qualifier.
func splitQualified(name string) (base, qualifier string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[i+1:], name[:i]
}

// matchDeclared tests whether a namespace corresponds to a declared
// external package: the package name itself, a sub-namespace of it, or
// a leading segment group of it (using Serilog.Events covers package
// Serilog). Comparison is case-insensitive, as NuGet package IDs are;
// declared is sorted, so ties resolve the same way every run.
func matchDeclared(namespace string, declared []string) (string, bool) {
	lower := strings.ToLower(namespace)
	for _, pkg := range declared {
		p := strings.ToLower(pkg)
		if lower == p || strings.HasPrefix(lower, p+".") {
			return pkg, true
		}
	}
	for _, pkg := range declared {
		p := strings.ToLower(pkg)
		if strings.HasPrefix(p, lower+".") {
			return pkg, true
		}
	}
	return "", false
}

func allFrameworkUsings(usingSet map[string]bool) bool {
	for u := range usingSet {
		if !isFrameworkNamespace(u) {
			return false
		}
	}
	return true
}
