package csharp

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"sort"
	"sync"

	"github.com/carvekit/carve/pkg/extract"
	"github.com/carvekit/carve/pkg/ignore"
)

var (
	typeDeclRE  = regexp.MustCompile(`\b(?:class|interface|enum|struct|record)\s+([A-Za-z_][A-Za-z0-9_]*)`)
	namespaceRE = regexp.MustCompile(`\bnamespace\s+([A-Za-z_][A-Za-z0-9_.]*)`)
)

// Symbol is one indexed type declaration.
type Symbol struct {
	Name      string // declared type name
	File      string // absolute path of the defining file
	Namespace string // enclosing namespace ("" for file-scoped code without one)
}

// Index maps declared type names to their defining files. It is built
// once per run and read-only afterwards; multiple entries for the same
// name represent genuine ambiguity, not a bug.
type Index struct {
	symbols map[string][]Symbol
}

// Lookup returns every indexed definition of name, in deterministic
// (sorted-file) order.
func (ix *Index) Lookup(name string) []Symbol {
	return ix.symbols[name]
}

// Size returns the number of distinct indexed names.
func (ix *Index) Size() int { return len(ix.symbols) }

// BuildIndex scans every non-ignored .cs file under the roots and folds
// the declarations into one index.
//
// The scan is concurrent: each worker reads only its own files and
// emits an independent partial result, so no synchronization is needed
// during extraction. A single merge step then folds the partials in
// sorted file order, which keeps "first indexed entry" tie-breaks
// deterministic across runs. Unreadable files are recorded as warnings
// and simply contribute no symbols.
func BuildIndex(ctx context.Context, roots []string, filter *ignore.Filter) (*Index, []extract.Warning, error) {
	files := listSourceFiles(roots, filter)

	type partial struct {
		file    string
		symbols []Symbol
		err     error
	}

	jobs := make(chan string)
	results := make(chan partial, len(files))

	workers := runtime.NumCPU()
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				symbols, err := scanFile(file)
				results <- partial{file: file, symbols: symbols, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, file := range files {
			select {
			case jobs <- file:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	byFile := make(map[string]partial, len(files))
	for p := range results {
		byFile[p.file] = p
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Single-writer merge in sorted order: ownership of every partial
	// has transferred to this goroutine by now.
	ix := &Index{symbols: make(map[string][]Symbol)}
	var warnings []extract.Warning
	for _, file := range files {
		p, ok := byFile[file]
		if !ok {
			continue
		}
		if p.err != nil {
			warnings = append(warnings, extract.Warningf(extract.WarnUnreadable, file, "index: %v", p.err))
			continue
		}
		for _, s := range p.symbols {
			ix.symbols[s.Name] = append(ix.symbols[s.Name], s)
		}
	}

	return ix, warnings, nil
}

// listSourceFiles walks the roots collecting non-ignored .cs files in
// sorted order. Files reachable through multiple roots appear once.
func listSourceFiles(roots []string, filter *ignore.Filter) []string {
	seen := make(map[string]bool)
	var files []string

	for _, root := range roots {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && filter.Ignored(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".cs" || filter.Ignored(path) || seen[path] {
				return nil
			}
			seen[path] = true
			files = append(files, path)
			return nil
		})
	}

	sort.Strings(files)
	return files
}

// scanFile performs the lightweight syntactic scan of one file: type
// declarations paired with the nearest preceding namespace declaration.
// This is deliberately not a full parse.
func scanFile(path string) ([]Symbol, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	nsMatches := namespaceRE.FindAllSubmatchIndex(content, -1)
	declMatches := typeDeclRE.FindAllSubmatchIndex(content, -1)

	symbols := make([]Symbol, 0, len(declMatches))
	for _, m := range declMatches {
		name := string(content[m[2]:m[3]])
		symbols = append(symbols, Symbol{
			Name:      name,
			File:      path,
			Namespace: enclosingNamespace(content, nsMatches, m[0]),
		})
	}
	return symbols, nil
}

// enclosingNamespace returns the namespace declared nearest before
// offset. Both block-scoped and file-scoped namespace forms reduce to
// "the last declaration seen above the type".
func enclosingNamespace(content []byte, nsMatches [][]int, offset int) string {
	i, _ := slices.BinarySearchFunc(nsMatches, offset, func(m []int, off int) int {
		return m[0] - off
	})
	if i == 0 {
		return ""
	}
	m := nsMatches[i-1]
	return string(content[m[2]:m[3]])
}
