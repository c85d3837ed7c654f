package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carvekit/carve/pkg/errors"
)

// writeFiles creates a temp tree from a map of relative path to content
// and returns its root.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestJobValidate(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.py": ""})
	entry := filepath.Join(dir, "main.py")

	tests := []struct {
		name     string
		job      Job
		wantErr  bool
		wantCode errors.Code
	}{
		{
			name: "valid",
			job:  Job{Entries: []string{entry}, Roots: []string{dir}},
		},
		{
			name:     "no entries",
			job:      Job{Roots: []string{dir}},
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidJob,
		},
		{
			name:     "no roots",
			job:      Job{Entries: []string{entry}},
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidJob,
		},
		{
			name:     "missing root",
			job:      Job{Entries: []string{entry}, Roots: []string{filepath.Join(dir, "gone")}},
			wantErr:  true,
			wantCode: errors.ErrCodeRootNotFound,
		},
		{
			name:     "root is a file",
			job:      Job{Entries: []string{entry}, Roots: []string{entry}},
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidRoot,
		},
		{
			name:     "missing entry",
			job:      Job{Entries: []string{filepath.Join(dir, "gone.py")}, Roots: []string{dir}},
			wantErr:  true,
			wantCode: errors.ErrCodeEntryNotFound,
		},
		{
			name:     "entry is a directory",
			job:      Job{Entries: []string{dir}, Roots: []string{dir}},
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidJob,
		},
		{
			name:     "bad ignore pattern",
			job:      Job{Entries: []string{entry}, Roots: []string{dir}, IgnoreFiles: []string{"[unclosed"}},
			wantErr:  true,
			wantCode: errors.ErrCodeInvalidPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, tt.wantCode) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestJobValidateAggregates(t *testing.T) {
	job := Job{}
	err := job.Validate()
	if err == nil {
		t.Fatal("Validate() should fail on an empty job")
	}
	// Both the missing entries and the missing roots should be reported.
	msg := err.Error()
	if !strings.Contains(msg, "entry") || !strings.Contains(msg, "root") {
		t.Errorf("Validate() = %q, want both violations reported", msg)
	}
}

func TestResolvedEntriesDedup(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.py": ""})
	entry := filepath.Join(dir, "main.py")

	job := Job{Entries: []string{entry, entry}, Roots: []string{dir}}
	entries, err := job.ResolvedEntries()
	if err != nil {
		t.Fatalf("ResolvedEntries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("ResolvedEntries() = %v, duplicates should collapse", entries)
	}
}

func TestResolvedRootsAbsolute(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.py": ""})

	job := Job{Entries: []string{filepath.Join(dir, "main.py")}, Roots: []string{dir}}
	roots, err := job.ResolvedRoots()
	if err != nil {
		t.Fatalf("ResolvedRoots() error = %v", err)
	}
	if len(roots) != 1 || !filepath.IsAbs(roots[0]) {
		t.Errorf("ResolvedRoots() = %v, want one absolute path", roots)
	}
}
