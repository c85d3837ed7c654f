// Package output materializes an extraction result: a directory tree
// and/or zip archive mirroring each file's root-relative path, one
// external-dependency manifest per language, and an optional summary
// report. The package contains no resolution logic; it consumes the
// engine's result as-is.
package output

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/carvekit/carve/pkg/errors"
	"github.com/carvekit/carve/pkg/extract"
)

// marker names a file written into every destination directory so a
// later run can tell its own previous output apart from foreign
// content it must not clobber.
const marker = ".carve"

// manifestNames maps language tags to their dependency-list file.
var manifestNames = map[string]string{
	"python": "requirements.txt",
	"csharp": "csharp_packages.txt",
}

// Options selects what gets written.
type Options struct {
	OutputDir   string               // destination directory ("" to skip)
	ArchivePath string               // zip archive path ("" to skip)
	Report      bool                 // include the markdown summary report
	Logf        func(string, ...any) // optional progress callback
}

// Materialize writes the result according to opts and returns the run
// report. Path collisions across roots are recorded as warnings on the
// result and the colliding file is skipped, never silently overwritten.
func Materialize(res *extract.Result, job *extract.Job, opts Options) (*Report, error) {
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}

	files := plan(res)
	report := NewReport(job, res)

	if opts.OutputDir != "" {
		opts.Logf("copying %d files to %s", len(files), opts.OutputDir)
		if err := writeDir(opts.OutputDir, files, res, report, opts.Report); err != nil {
			return report, err
		}
	}
	if opts.ArchivePath != "" {
		opts.Logf("creating archive %s", opts.ArchivePath)
		if err := writeArchive(opts.ArchivePath, files, res, report, opts.Report); err != nil {
			return report, err
		}
	}

	return report, nil
}

// plan resolves output-relative path collisions: when two distinct
// files map to the same relative path (possible with multiple roots),
// the first file in deterministic order wins and the second becomes a
// warning. The precedence rule is deliberate and documented rather than
// an accident of map ordering.
func plan(res *extract.Result) []*extract.File {
	claimed := make(map[string]string)
	var out []*extract.File
	for _, f := range res.Files() {
		if winner, taken := claimed[f.Rel]; taken {
			res.AddWarning(extract.Warningf(extract.WarnPathCollision, f.Path,
				"output path %s already produced by %s; file skipped", f.Rel, winner))
			continue
		}
		claimed[f.Rel] = f.Path
		out = append(out, f)
	}
	return out
}

// ManifestName returns the dependency-list filename for a language.
func ManifestName(lang string) string {
	if name, ok := manifestNames[lang]; ok {
		return name
	}
	return lang + "_packages.txt"
}

// manifestContent renders the flat package list for one language.
func manifestContent(res *extract.Result, lang string) string {
	var b strings.Builder
	for _, pkg := range res.Packages(lang) {
		b.WriteString(pkg.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// writeDir copies the planned files into dir, creating parents as
// needed. An existing destination is replaced only when it is empty or
// carries the marker of a previous run; anything else is a conflict.
func writeDir(dir string, files []*extract.File, res *extract.Result, report *Report, withReport bool) error {
	if err := prepareDir(dir); err != nil {
		return err
	}

	for _, f := range files {
		dest := filepath.Join(dir, filepath.FromSlash(f.Rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeOutput, err, "create %s", filepath.Dir(dest))
		}
		if err := copyFile(f.Path, dest); err != nil {
			return errors.Wrap(errors.ErrCodeOutput, err, "copy %s", f.Rel)
		}
	}

	for _, lang := range res.Languages() {
		name := ManifestName(lang)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(manifestContent(res, lang)), 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeOutput, err, "write %s", name)
		}
	}

	if withReport {
		if err := os.WriteFile(filepath.Join(dir, ReportFileName), []byte(report.Markdown()), 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeOutput, err, "write %s", ReportFileName)
		}
	}

	return os.WriteFile(filepath.Join(dir, marker), []byte(report.RunID+"\n"), 0o644)
}

// prepareDir makes dir exist and empty. A non-empty destination is
// wiped only when it holds the marker of a previous run.
func prepareDir(dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case os.IsNotExist(err):
		return os.MkdirAll(dir, 0o755)
	case err != nil:
		return errors.Wrap(errors.ErrCodeOutput, err, "read destination %s", dir)
	case len(entries) == 0:
		return nil
	}

	if _, err := os.Stat(filepath.Join(dir, marker)); err != nil {
		return errors.New(errors.ErrCodeDestination,
			"destination %s exists and does not look like a previous extraction output; refusing to overwrite", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrap(errors.ErrCodeOutput, err, "clear destination %s", dir)
	}
	return os.MkdirAll(dir, 0o755)
}

// writeArchive streams the planned files into a zip archive with the
// same relative layout as the directory output.
func writeArchive(path string, files []*extract.File, res *extract.Result, report *Report, withReport bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutput, err, "create archive %s", path)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, file := range files {
		if err := addToArchive(zw, file); err != nil {
			return err
		}
	}

	for _, lang := range res.Languages() {
		w, err := zw.Create(ManifestName(lang))
		if err != nil {
			return errors.Wrap(errors.ErrCodeOutput, err, "archive entry %s", ManifestName(lang))
		}
		fmt.Fprint(w, manifestContent(res, lang))
	}

	if withReport {
		w, err := zw.Create(ReportFileName)
		if err != nil {
			return errors.Wrap(errors.ErrCodeOutput, err, "archive entry %s", ReportFileName)
		}
		fmt.Fprint(w, report.Markdown())
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeOutput, err, "finalize archive %s", path)
	}
	return nil
}

func addToArchive(zw *zip.Writer, file *extract.File) error {
	src, err := os.Open(file.Path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutput, err, "open %s", file.Path)
	}
	defer src.Close()

	w, err := zw.Create(file.Rel)
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutput, err, "archive entry %s", file.Rel)
	}
	if _, err := io.Copy(w, src); err != nil {
		return errors.Wrap(errors.ErrCodeOutput, err, "archive entry %s", file.Rel)
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
