package ignore

import "testing"

func TestIgnored(t *testing.T) {
	tests := []struct {
		name  string
		dirs  []string
		globs []string
		path  string
		want  bool
	}{
		{
			name: "directory segment match",
			dirs: []string{"venv"},
			path: "/project/venv/lib/requests.py",
			want: true,
		},
		{
			name: "directory name only matches whole segment",
			dirs: []string{"venv"},
			path: "/project/venv2/lib/requests.py",
			want: false,
		},
		{
			name: "nested cache directory",
			dirs: []string{"__pycache__"},
			path: "/project/utils/__pycache__/db.cpython-312.pyc",
			want: true,
		},
		{
			name:  "glob matches final segment",
			globs: []string{"*.log"},
			path:  "/project/build/output.log",
			want:  true,
		},
		{
			name:  "glob does not match intermediate segment",
			globs: []string{"*.log"},
			path:  "/project/app.log/keep.py",
			want:  false,
		},
		{
			name:  "exact file name",
			globs: []string{".DS_Store"},
			path:  "/project/.DS_Store",
			want:  true,
		},
		{
			name:  "generated suffix pattern",
			globs: []string{"*.g.cs"},
			path:  "/project/Models/Pedido.g.cs",
			want:  true,
		},
		{
			name:  "non-matching path",
			dirs:  []string{"bin", "obj"},
			globs: []string{"*.log"},
			path:  "/project/src/PedidoService.cs",
			want:  false,
		},
		{
			name: "empty filter ignores nothing",
			path: "/project/anything.py",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.dirs, tt.globs)
			if got := f.Ignored(tt.path); got != tt.want {
				t.Errorf("Ignored(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIgnoredNilFilter(t *testing.T) {
	var f *Filter
	if f.Ignored("/project/main.py") {
		t.Error("nil filter must not ignore anything")
	}
}

func TestValidate(t *testing.T) {
	f := New(nil, []string{"*.log", "data-??.csv"})
	if pattern, ok := f.Validate(); !ok {
		t.Errorf("Validate() rejected valid pattern %q", pattern)
	}

	bad := New(nil, []string{"[unclosed"})
	if _, ok := bad.Validate(); ok {
		t.Error("Validate() accepted malformed pattern")
	}
}
