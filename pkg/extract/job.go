package extract

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/carvekit/carve/pkg/errors"
	"github.com/carvekit/carve/pkg/ignore"
)

// Job is a fully-specified extraction request. It is assembled by a
// caller (CLI flags, config file, serve API) and never mutated once a
// run starts.
type Job struct {
	// Entries are the files the closure is computed from. At least one
	// is required; duplicates are collapsed at traversal start.
	Entries []string `json:"entries"`

	// Roots are the project directories searched for local dependency
	// resolution and used to compute output-relative paths. A file's
	// relative path is computed against the first root that contains it.
	Roots []string `json:"roots"`

	// IgnoreDirs are directory names excluded wherever they appear as a
	// path segment (e.g. "venv", "bin").
	IgnoreDirs []string `json:"ignore_dirs,omitempty"`

	// IgnoreFiles are glob patterns matched against file names
	// (e.g. "*.log", "*.g.cs").
	IgnoreFiles []string `json:"ignore_files,omitempty"`

	// Direct limits the closure to the entry files plus their immediate
	// dependencies; no transitive expansion occurs.
	Direct bool `json:"direct,omitempty"`

	// OutputDir, when set, receives a directory tree mirroring each
	// included file's root-relative path.
	OutputDir string `json:"output_dir,omitempty"`

	// ArchivePath, when set, receives a zip archive with the same layout.
	ArchivePath string `json:"archive,omitempty"`

	// Report enables the markdown summary report in the output.
	Report bool `json:"report,omitempty"`
}

// Filter builds the ignore filter for this job.
func (j *Job) Filter() *ignore.Filter {
	return ignore.New(j.IgnoreDirs, j.IgnoreFiles)
}

// Validate checks that the job's scope is well-defined. It aggregates
// every violation rather than stopping at the first, and fails the run
// before traversal starts: a job without valid roots and entries has no
// meaningful closure.
func (j *Job) Validate() error {
	var result *multierror.Error

	if len(j.Entries) == 0 {
		result = multierror.Append(result, errors.New(errors.ErrCodeInvalidJob, "at least one entry file is required"))
	}
	if len(j.Roots) == 0 {
		result = multierror.Append(result, errors.New(errors.ErrCodeInvalidJob, "at least one project root is required"))
	}

	for _, root := range j.Roots {
		info, err := os.Stat(root)
		switch {
		case err != nil:
			result = multierror.Append(result, errors.Wrap(errors.ErrCodeRootNotFound, err, "project root %s", root))
		case !info.IsDir():
			result = multierror.Append(result, errors.New(errors.ErrCodeInvalidRoot, "project root %s is not a directory", root))
		}
	}

	for _, entry := range j.Entries {
		info, err := os.Stat(entry)
		switch {
		case err != nil:
			result = multierror.Append(result, errors.Wrap(errors.ErrCodeEntryNotFound, err, "entry file %s", entry))
		case info.IsDir():
			result = multierror.Append(result, errors.New(errors.ErrCodeInvalidJob, "entry %s is a directory, not a file", entry))
		}
	}

	if pattern, ok := j.Filter().Validate(); !ok {
		result = multierror.Append(result, errors.New(errors.ErrCodeInvalidPattern, "invalid ignore pattern %q", pattern))
	}

	return result.ErrorOrNil()
}

// ResolvedRoots returns the roots as cleaned absolute paths, preserving
// the configured priority order.
func (j *Job) ResolvedRoots() ([]string, error) {
	roots := make([]string, 0, len(j.Roots))
	for _, root := range j.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRoot, err, "resolve root %s", root)
		}
		roots = append(roots, filepath.Clean(abs))
	}
	return roots, nil
}

// ResolvedEntries returns the entry files as deduplicated absolute
// paths, preserving first-occurrence order so entry attribution stays
// deterministic.
func (j *Job) ResolvedEntries() ([]string, error) {
	seen := make(map[string]bool, len(j.Entries))
	entries := make([]string, 0, len(j.Entries))
	for _, entry := range j.Entries {
		abs, err := filepath.Abs(entry)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidJob, err, "resolve entry %s", entry)
		}
		abs = filepath.Clean(abs)
		if !seen[abs] {
			seen[abs] = true
			entries = append(entries, abs)
		}
	}
	return entries, nil
}
