package python

import (
	"os"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/carvekit/carve/pkg/extract"
)

// pep508RE splits a PEP 508 requirement string into name and an
// optional pinned version.
var pep508RE = regexp.MustCompile(`^\s*([a-zA-Z0-9][-a-zA-Z0-9._]*)\s*(?:\[[^\]]*\])?\s*(?:==\s*([^\s;,]+))?`)

// Pyproject reads pyproject.toml manifests, covering both the standard
// [project] dependency list and the legacy [tool.poetry] table. A file
// with neither section yields an empty package list, not an error.
type Pyproject struct{}

func (p *Pyproject) Lang() string              { return "python" }
func (p *Pyproject) Type() string              { return "pyproject" }
func (p *Pyproject) Supports(name string) bool { return name == "pyproject.toml" }

func (p *Pyproject) Read(path string) ([]extract.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var pkgs []extract.Package

	for _, dep := range doc.Project.Dependencies {
		m := pep508RE.FindStringSubmatch(dep)
		if len(m) < 2 || m[1] == "" {
			continue
		}
		name := NormalizeName(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		pkg := extract.Package{Name: name}
		if len(m) > 2 {
			pkg.Version = m[2]
		}
		pkgs = append(pkgs, pkg)
	}

	for name, spec := range doc.Tool.Poetry.Dependencies {
		norm := NormalizeName(name)
		if norm == "python" || seen[norm] {
			continue
		}
		seen[norm] = true
		pkg := extract.Package{Name: norm}
		if s, ok := spec.(string); ok {
			pkg.Version = poetryPin(s)
		}
		pkgs = append(pkgs, pkg)
	}

	return pkgs, nil
}

// poetryPin extracts an exact version from a poetry constraint. Caret,
// tilde, and range constraints are not pins and yield an empty version.
func poetryPin(spec string) string {
	if spec == "" || spec == "*" {
		return ""
	}
	switch spec[0] {
	case '^', '~', '>', '<', '!':
		return ""
	}
	return spec
}
