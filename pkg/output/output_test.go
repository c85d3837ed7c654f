package output

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carvekit/carve/pkg/errors"
	"github.com/carvekit/carve/pkg/extract"
)

// newTestResult builds a result with real files on disk so Materialize
// has something to copy.
func newTestResult(t *testing.T) (*extract.Result, *extract.Job) {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"main.py":       "import helper\n",
		"sub/helper.py": "x = 1\n",
	}
	res := extract.NewResult()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	entry := filepath.Join(dir, "main.py")
	res.AddFile(&extract.File{Path: entry, Rel: "main.py", Root: dir, Lang: "python", Entries: []string{entry}})
	res.AddFile(&extract.File{Path: filepath.Join(dir, "sub", "helper.py"), Rel: "sub/helper.py", Root: dir, Lang: "python", Entries: []string{entry}})
	res.AddPackage("python", extract.Package{Name: "requests", Version: "2.31.0"})

	job := &extract.Job{Entries: []string{entry}, Roots: []string{dir}}
	return res, job
}

func TestMaterializeDir(t *testing.T) {
	res, job := newTestResult(t)
	dest := filepath.Join(t.TempDir(), "out")

	report, err := Materialize(res, job, Options{OutputDir: dest, Report: true})
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if report.RunID == "" {
		t.Error("report should carry a run ID")
	}

	for _, rel := range []string{"main.py", "sub/helper.py", "requirements.txt", ReportFileName, ".carve"} {
		if _, err := os.Stat(filepath.Join(dest, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing output file %s: %v", rel, err)
		}
	}

	manifest, err := os.ReadFile(filepath.Join(dest, "requirements.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(manifest) != "requests==2.31.0\n" {
		t.Errorf("requirements.txt = %q, want pinned requests", manifest)
	}
}

func TestMaterializeNoReportByDefault(t *testing.T) {
	res, job := newTestResult(t)
	dest := filepath.Join(t.TempDir(), "out")

	if _, err := Materialize(res, job, Options{OutputDir: dest}); err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, ReportFileName)); err == nil {
		t.Error("report file should only exist when requested")
	}
}

func TestMaterializeOverwritesPreviousRun(t *testing.T) {
	res, job := newTestResult(t)
	dest := filepath.Join(t.TempDir(), "out")

	if _, err := Materialize(res, job, Options{OutputDir: dest}); err != nil {
		t.Fatalf("first Materialize() error = %v", err)
	}
	// Leftover from the first run that the second run does not produce.
	stale := filepath.Join(dest, "stale.py")
	if err := os.WriteFile(stale, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Materialize(res, job, Options{OutputDir: dest}); err != nil {
		t.Fatalf("second Materialize() error = %v", err)
	}
	if _, err := os.Stat(stale); err == nil {
		t.Error("previous run output should be wiped before writing")
	}
}

func TestMaterializeRefusesForeignDir(t *testing.T) {
	res, job := newTestResult(t)
	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "precious.txt"), []byte("keep me\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Materialize(res, job, Options{OutputDir: dest})
	if err == nil {
		t.Fatal("Materialize() should refuse a non-empty foreign destination")
	}
	if !errors.Is(err, errors.ErrCodeDestination) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeDestination)
	}
	if _, statErr := os.Stat(filepath.Join(dest, "precious.txt")); statErr != nil {
		t.Error("foreign content must survive the refusal")
	}
}

func TestMaterializeEmptyDirAccepted(t *testing.T) {
	res, job := newTestResult(t)
	dest := t.TempDir()

	if _, err := Materialize(res, job, Options{OutputDir: dest}); err != nil {
		t.Errorf("Materialize() into an empty existing directory should work: %v", err)
	}
}

func TestMaterializeArchive(t *testing.T) {
	res, job := newTestResult(t)
	archive := filepath.Join(t.TempDir(), "out.zip")

	if _, err := Materialize(res, job, Options{ArchivePath: archive, Report: true}); err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	zr, err := zip.OpenReader(archive)
	if err != nil {
		t.Fatalf("zip.OpenReader() error = %v", err)
	}
	defer zr.Close()

	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"main.py", "sub/helper.py", "requirements.txt", ReportFileName} {
		if !names[want] {
			t.Errorf("archive missing %s; has %v", want, names)
		}
	}
	if names[".carve"] {
		t.Error("the directory marker has no business inside an archive")
	}
}

func TestPlanPathCollision(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name, "util.py"), []byte(name+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	res := extract.NewResult()
	res.AddFile(&extract.File{Path: filepath.Join(dir, "a", "util.py"), Rel: "util.py"})
	res.AddFile(&extract.File{Path: filepath.Join(dir, "b", "util.py"), Rel: "util.py"})

	files := plan(res)
	if len(files) != 1 {
		t.Fatalf("plan() = %v, want a single winner", files)
	}
	if files[0].Path != filepath.Join(dir, "a", "util.py") {
		t.Errorf("winner = %s, deterministic order puts a/util.py first", files[0].Path)
	}

	warnings := res.Warnings()
	if len(warnings) != 1 || warnings[0].Kind != extract.WarnPathCollision {
		t.Errorf("Warnings() = %v, want one path-collision warning", warnings)
	}
}

func TestManifestName(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"python", "requirements.txt"},
		{"csharp", "csharp_packages.txt"},
		{"ruby", "ruby_packages.txt"},
	}

	for _, tt := range tests {
		if got := ManifestName(tt.lang); got != tt.want {
			t.Errorf("ManifestName(%q) = %q, want %q", tt.lang, got, tt.want)
		}
	}
}

func TestReportMarkdown(t *testing.T) {
	res, job := newTestResult(t)
	res.AddWarning(extract.Warningf(extract.WarnUnresolved, "/x.py", "module gone"))

	report := NewReport(job, res)
	md := report.Markdown()

	for _, want := range []string{
		"main.py",
		"sub/helper.py",
		"requests==2.31.0",
		"requirements.txt",
		"unresolved-reference",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() missing %q", want)
		}
	}

	if report.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", report.TotalFiles)
	}
	if report.PerEntry[job.Entries[0]] != 2 {
		t.Errorf("PerEntry = %v, want both files attributed to the entry", report.PerEntry)
	}
}
