package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Options tunes a resolver run.
type Options struct {
	// Logf receives progress/debug messages. Optional.
	Logf func(string, ...any)
}

// WithDefaults returns a copy of Options with zero values replaced.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	return opts
}

// Resolver computes the dependency closure for one job. It owns the
// breadth-first traversal: seeding entries, dispatching each visited
// file to the extractor for its detected language, and folding the
// discovered targets into the Result. Cycles and diamonds close
// naturally through the visited set; every file is parsed at most once
// per run regardless of how many edges point to it.
type Resolver struct {
	job   *Job
	langs Registry
	opts  Options
}

// NewResolver creates a resolver for the given job and language set.
func NewResolver(job *Job, langs Registry, opts Options) *Resolver {
	return &Resolver{job: job, langs: langs, opts: opts.WithDefaults()}
}

// item is one pending traversal step.
type item struct {
	path  string
	depth int
	entry string // entry point this file was first reached from
}

// Run validates the job, reads manifests, and walks the file graph.
// The returned Result is self-consistent even when ctx is cancelled
// mid-run: every file is fully processed before being marked visited,
// and the queue boundary is the cancellation checkpoint.
func (r *Resolver) Run(ctx context.Context) (*Result, error) {
	if err := r.job.Validate(); err != nil {
		return nil, err
	}

	roots, err := r.job.ResolvedRoots()
	if err != nil {
		return nil, err
	}
	entries, err := r.job.ResolvedEntries()
	if err != nil {
		return nil, err
	}

	env := &Env{
		Roots:    roots,
		Ignore:   r.job.Filter(),
		Declared: make(map[string][]Package),
		Logf:     r.opts.Logf,
	}

	res := NewResult()

	// Manifest reading runs before traversal: declared packages carry
	// the authoritative versions, so they must be observed first.
	ScanManifests(env, r.langs.ManifestReaders(), res)

	// Extractors are built lazily on the first file of each language.
	// For the index-based languages this is where the symbol index is
	// built, and it happens at most once per run.
	extractors := make(map[string]Extractor, len(r.langs))

	queue := make([]item, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if env.Ignore.Ignored(e) {
			res.AddWarning(Warningf(WarnIgnoredReference, e, "entry file matches ignore patterns; skipped"))
			continue
		}
		seen[e] = true
		queue = append(queue, item{path: e, depth: 0, entry: e})
	}

	visited := make(map[string]bool, len(queue))

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		cur := queue[0]
		queue = queue[1:]

		if visited[cur.path] {
			continue
		}
		visited[cur.path] = true

		lang := r.langs.Detect(cur.path)
		res.AddFile(r.newFile(cur, lang, env, res))

		// Under the direct-only policy, dependencies of the entries are
		// included but never expanded.
		if r.job.Direct && cur.depth >= 1 {
			continue
		}
		if lang == nil {
			continue
		}

		src, err := os.ReadFile(cur.path)
		if err != nil {
			res.AddWarning(Warningf(WarnUnreadable, cur.path, "%v", err))
			continue
		}

		ext, err := r.extractor(ctx, lang, env, extractors, res)
		if err != nil {
			return res, err
		}

		r.opts.Logf("analyzing (depth %d): %s", cur.depth, cur.path)
		extraction, err := ext.Extract(ctx, cur.path, src)
		if err != nil {
			return res, err
		}

		res.AddWarnings(extraction.Warnings)
		for _, pkg := range extraction.External {
			res.AddPackage(lang.Name, env.ResolveVersion(lang.Name, pkg))
		}
		for _, target := range extraction.Local {
			if target == cur.path {
				continue
			}
			res.AddEdge(cur.path, target)
			if !seen[target] {
				seen[target] = true
				queue = append(queue, item{path: target, depth: cur.depth + 1, entry: cur.entry})
			}
		}
	}

	return res, nil
}

// extractor returns the cached extractor for lang, building it on first
// use. Build-phase warnings (e.g. unreadable files during indexing) go
// straight to the result.
func (r *Resolver) extractor(ctx context.Context, lang *Language, env *Env, cache map[string]Extractor, res *Result) (Extractor, error) {
	if ext, ok := cache[lang.Name]; ok {
		return ext, nil
	}
	ext, warnings, err := lang.NewExtractor(ctx, env)
	if err != nil {
		return nil, err
	}
	res.AddWarnings(warnings)
	cache[lang.Name] = ext
	return ext, nil
}

// newFile builds the result entry for a visited file, computing its
// owning root and output-relative path (first matching root wins).
func (r *Resolver) newFile(cur item, lang *Language, env *Env, res *Result) *File {
	f := &File{Path: cur.path, Entries: []string{cur.entry}}
	if lang != nil {
		f.Lang = lang.Name
	}

	for _, root := range env.Roots {
		if rel, ok := relTo(root, cur.path); ok {
			f.Root = root
			f.Rel = rel
			return f
		}
	}

	// The file lies under none of the configured roots; fall back to
	// its base name and surface the condition.
	f.Rel = filepath.Base(cur.path)
	res.AddWarning(Warningf(WarnOutsideRoots, cur.path, "not under any project root; output path falls back to %s", f.Rel))
	return f
}

// relTo returns path relative to root when path lies under root.
func relTo(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
