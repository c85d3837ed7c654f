package python

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/carvekit/carve/pkg/extract"
	"github.com/carvekit/carve/pkg/ignore"
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

func newTestExtractor(t *testing.T, roots []string, filter *ignore.Filter) extract.Extractor {
	t.Helper()
	if filter == nil {
		filter = ignore.New(nil, nil)
	}
	env := &extract.Env{
		Roots:    roots,
		Ignore:   filter,
		Declared: make(map[string][]extract.Package),
		Logf:     func(string, ...any) {},
	}
	ext, warnings, err := Language.NewExtractor(context.Background(), env)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("NewExtractor() warnings = %v", warnings)
	}
	return ext
}

func TestExtractImports(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"helper.py":         "x = 1\n",
		"pkg/__init__.py":   "",
		"pkg/mod.py":        "y = 2\n",
		"utils/__init__.py": "",
	})

	src := []byte(`import os
import helper
import pkg.mod
from utils import thing
import requests
import numpy as np
`)

	ext := newTestExtractor(t, []string{dir}, nil)
	got, err := ext.Extract(context.Background(), filepath.Join(dir, "main.py"), src)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantLocal := map[string]bool{
		filepath.Join(dir, "helper.py"):            true,
		filepath.Join(dir, "pkg", "mod.py"):        true,
		filepath.Join(dir, "utils", "__init__.py"): true,
	}
	if len(got.Local) != len(wantLocal) {
		t.Errorf("Local = %v, want %v", got.Local, wantLocal)
	}
	for _, target := range got.Local {
		if !wantLocal[target] {
			t.Errorf("unexpected local target %s", target)
		}
	}

	wantExternal := map[string]bool{"requests": true, "numpy": true}
	if len(got.External) != len(wantExternal) {
		t.Errorf("External = %v, want requests and numpy", got.External)
	}
	for _, pkg := range got.External {
		if !wantExternal[pkg.Name] {
			t.Errorf("unexpected external package %s (stdlib must be filtered)", pkg.Name)
		}
	}

	if len(got.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", got.Warnings)
	}
}

func TestExtractRelativeImportsSkipped(t *testing.T) {
	dir := writeFiles(t, map[string]string{"sibling.py": ""})

	src := []byte(`from . import sibling
from .sibling import thing
from ..parent import other
`)

	ext := newTestExtractor(t, []string{dir}, nil)
	got, err := ext.Extract(context.Background(), filepath.Join(dir, "main.py"), src)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(got.Local) != 0 || len(got.External) != 0 {
		t.Errorf("relative imports should contribute nothing, got local=%v external=%v", got.Local, got.External)
	}
}

func TestExtractSyntaxError(t *testing.T) {
	dir := writeFiles(t, map[string]string{"helper.py": ""})

	src := []byte("import helper\ndef broken(:\n")

	ext := newTestExtractor(t, []string{dir}, nil)
	got, err := ext.Extract(context.Background(), filepath.Join(dir, "bad.py"), src)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(got.Local) != 0 {
		t.Errorf("Local = %v, syntax-error files contribute no edges", got.Local)
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Kind != extract.WarnSyntax {
		t.Errorf("Warnings = %v, want one syntax warning", got.Warnings)
	}
}

func TestExtractIgnoredTarget(t *testing.T) {
	dir := writeFiles(t, map[string]string{"generated.py": ""})

	src := []byte("import generated\n")

	filter := ignore.New(nil, []string{"generated.py"})
	ext := newTestExtractor(t, []string{dir}, filter)
	got, err := ext.Extract(context.Background(), filepath.Join(dir, "main.py"), src)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(got.Local) != 0 {
		t.Errorf("Local = %v, ignored targets must be excluded", got.Local)
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Kind != extract.WarnUnresolved {
		t.Errorf("Warnings = %v, want one unresolved warning", got.Warnings)
	}
}

func TestExtractDeduplicates(t *testing.T) {
	dir := writeFiles(t, map[string]string{"helper.py": ""})

	src := []byte("import helper\nimport helper\nimport requests\nimport requests\n")

	ext := newTestExtractor(t, []string{dir}, nil)
	got, err := ext.Extract(context.Background(), filepath.Join(dir, "main.py"), src)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(got.Local) != 1 {
		t.Errorf("Local = %v, want one deduplicated target", got.Local)
	}
	if len(got.External) != 1 {
		t.Errorf("External = %v, want one deduplicated package", got.External)
	}
}

func TestExtractNestedImports(t *testing.T) {
	dir := writeFiles(t, map[string]string{"lazy.py": ""})

	src := []byte(`def handler():
    import lazy
    return lazy
`)

	ext := newTestExtractor(t, []string{dir}, nil)
	got, err := ext.Extract(context.Background(), filepath.Join(dir, "main.py"), src)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(got.Local) != 1 || got.Local[0] != filepath.Join(dir, "lazy.py") {
		t.Errorf("Local = %v, imports inside functions must be collected", got.Local)
	}
}

func TestResolveModule(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a/b.py":           "",
		"a/b/__init__.py":  "",
		"only/__init__.py": "",
	})

	tests := []struct {
		name   string
		module string
		want   string
		ok     bool
	}{
		{"file beats package", "a.b", filepath.Join(dir, "a", "b.py"), true},
		{"package init", "only", filepath.Join(dir, "only", "__init__.py"), true},
		{"miss", "nowhere", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveModule(tt.module, []string{dir})
			if ok != tt.ok || got != tt.want {
				t.Errorf("ResolveModule(%q) = (%q, %v), want (%q, %v)", tt.module, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolveModuleRootOrder(t *testing.T) {
	first := writeFiles(t, map[string]string{"mod.py": "# first\n"})
	second := writeFiles(t, map[string]string{"mod.py": "# second\n"})

	got, ok := ResolveModule("mod", []string{first, second})
	if !ok || got != filepath.Join(first, "mod.py") {
		t.Errorf("ResolveModule() = (%q, %v), roots must be searched in priority order", got, ok)
	}
}

func TestIsStdlib(t *testing.T) {
	tests := []struct {
		module string
		want   bool
	}{
		{"os", true},
		{"json", true},
		{"collections", true},
		{"asyncio", true},
		{"requests", false},
		{"numpy", false},
		{"flask", false},
	}

	for _, tt := range tests {
		if got := IsStdlib(tt.module); got != tt.want {
			t.Errorf("IsStdlib(%q) = %v, want %v", tt.module, got, tt.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Flask", "flask"},
		{"typing_extensions", "typing-extensions"},
		{"zope.interface", "zope-interface"},
		{"ruamel.yaml", "ruamel-yaml"},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
