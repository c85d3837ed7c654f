package python

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveModule maps a dotted module name to a file under the project
// roots. Roots are searched in priority order; within one root, a
// direct file match (a/b.py for "a.b") beats a package match (the
// a/b/__init__.py of a directory package). Returns false when the
// module resolves nowhere locally.
//
// No filesystem search happens beyond the configured roots.
func ResolveModule(name string, roots []string) (string, bool) {
	relPath := strings.ReplaceAll(name, ".", string(filepath.Separator))

	for _, root := range roots {
		file := filepath.Join(root, relPath+".py")
		if isFile(file) {
			return file, true
		}
		initFile := filepath.Join(root, relPath, "__init__.py")
		if isFile(initFile) {
			return initFile, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
