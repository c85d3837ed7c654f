package csharp

import (
	"encoding/xml"
	"os"
	"strings"

	"github.com/carvekit/carve/pkg/extract"
)

// Csproj reads MSBuild project files and extracts PackageReference
// declarations. This is the authoritative source for NuGet package
// versions: usage resolution only ever decides whether a package is
// referenced. A project file without an ItemGroup of package
// references yields an empty list, not an error.
type Csproj struct{}

func (c *Csproj) Lang() string { return "csharp" }
func (c *Csproj) Type() string { return "csproj" }

func (c *Csproj) Supports(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csproj")
}

// project models the subset of the MSBuild schema we care about.
// Version may appear as an attribute or a child element.
type project struct {
	ItemGroups []struct {
		PackageReferences []struct {
			Include     string `xml:"Include,attr"`
			VersionAttr string `xml:"Version,attr"`
			VersionElem string `xml:"Version"`
		} `xml:"PackageReference"`
	} `xml:"ItemGroup"`
}

func (c *Csproj) Read(path string) ([]extract.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj project
	if err := xml.Unmarshal(data, &proj); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var pkgs []extract.Package
	for _, group := range proj.ItemGroups {
		for _, ref := range group.PackageReferences {
			if ref.Include == "" || seen[ref.Include] {
				continue
			}
			seen[ref.Include] = true
			version := ref.VersionAttr
			if version == "" {
				version = strings.TrimSpace(ref.VersionElem)
			}
			pkgs = append(pkgs, extract.Package{Name: ref.Include, Version: version})
		}
	}
	return pkgs, nil
}
