package python

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/carvekit/carve/pkg/extract"
)

var requirementRE = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)\s*(?:==\s*([^\s;#]+))?`)

// Requirements reads requirements.txt-style manifests. Only pinned
// versions (==) carry over; range specifiers declare the package but
// leave the version open.
type Requirements struct{}

func (r *Requirements) Lang() string { return "python" }
func (r *Requirements) Type() string { return "requirements.txt" }

func (r *Requirements) Supports(name string) bool {
	return name == "requirements.txt" ||
		(strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt"))
}

func (r *Requirements) Read(path string) ([]extract.Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := make(map[string]bool)
	var pkgs []extract.Package

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		// URL and VCS requirements carry no usable package name.
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		m := requirementRE.FindStringSubmatch(line)
		if len(m) < 2 {
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

	return pkgs, scanner.Err()
}

// NormalizeName lowercases a distribution name and collapses the
// separator variants (PEP 503).
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.ReplaceAll(name, ".", "-")
	return name
}
