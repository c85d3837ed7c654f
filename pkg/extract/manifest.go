package extract

import (
	"io/fs"
	"path/filepath"
)

// ManifestReader parses one kind of project-description file into the
// declared external package list. Manifests are the source of truth for
// version strings: usage resolution only ever determines whether a
// package is referenced, never which version it is.
type ManifestReader interface {
	// Supports reports whether this reader handles the given filename.
	Supports(filename string) bool
	// Read parses the manifest at path. A file with no recognizable
	// package section yields an empty list, not an error.
	Read(path string) ([]Package, error)
	// Lang returns the language tag the packages belong to.
	Lang() string
	// Type returns the manifest type identifier (e.g. "csproj").
	Type() string
}

// DetectManifest finds a reader that supports the given file path.
// Returns nil when no reader matches.
func DetectManifest(path string, readers ...ManifestReader) ManifestReader {
	name := filepath.Base(path)
	for _, r := range readers {
		if r.Supports(name) {
			return r
		}
	}
	return nil
}

// ScanManifests walks every project root looking for files any reader
// supports and folds their declared packages into env.Declared. A
// declaration alone never puts a package in the result: membership in
// the external set is decided by usage during traversal, which resolves
// versions against these declarations. Ignored directories are pruned
// from the walk; unreadable manifests become warnings, never run
// failures.
func ScanManifests(env *Env, readers []ManifestReader, res *Result) {
	for _, root := range env.Roots {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				res.AddWarning(Warningf(WarnUnreadable, path, "walk: %v", err))
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && env.Ignore.Ignored(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if env.Ignore.Ignored(path) {
				return nil
			}

			reader := DetectManifest(path, readers...)
			if reader == nil {
				return nil
			}

			pkgs, err := reader.Read(path)
			if err != nil {
				res.AddWarning(Warningf(WarnUnreadable, path, "manifest (%s): %v", reader.Type(), err))
				return nil
			}
			env.Logf("manifest %s (%s): %d packages", path, reader.Type(), len(pkgs))
			for _, p := range pkgs {
				declare(env, reader.Lang(), p, res)
			}
			return nil
		})
	}
}

// declare folds one manifest entry into env.Declared, deduplicating by
// name. The first declared version wins; a later manifest that
// disagrees is reported as a version conflict, while one that supplies
// a version for a previously version-less declaration fills it in
// silently.
func declare(env *Env, lang string, pkg Package, res *Result) {
	decls := env.Declared[lang]
	for i := range decls {
		if decls[i].Name != pkg.Name {
			continue
		}
		switch {
		case pkg.Version == "" || pkg.Version == decls[i].Version:
			// Nothing new.
		case decls[i].Version == "":
			decls[i].Version = pkg.Version
		default:
			res.AddWarning(Warningf(WarnVersionConflict, "",
				"package %s: keeping version %s, ignoring %s", pkg.Name, decls[i].Version, pkg.Version))
		}
		return
	}
	env.Declared[lang] = append(env.Declared[lang], pkg)
}
