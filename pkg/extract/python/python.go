// Package python implements the import-based extraction strategy.
//
// Python files declare their dependencies explicitly through import
// statements, so extraction is a syntax-tree walk: collect every
// import, resolve each absolute module path against the project roots,
// and classify what remains as external packages (unless the top-level
// module belongs to the standard library).
package python

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tspython "github.com/smacker/go-tree-sitter/python"

	"github.com/carvekit/carve/pkg/extract"
)

// Language is the python binding for the extraction engine.
var Language = &extract.Language{
	Name:         "python",
	Extensions:   []string{".py"},
	NewExtractor: newExtractor,
	Manifests: func() []extract.ManifestReader {
		return []extract.ManifestReader{&Requirements{}, &Pyproject{}}
	},
}

type pyExtractor struct {
	env    *extract.Env
	parser *sitter.Parser
}

func newExtractor(_ context.Context, env *extract.Env) (extract.Extractor, []extract.Warning, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tspython.GetLanguage())
	return &pyExtractor{env: env, parser: parser}, nil, nil
}

// Extract parses src and resolves its import statements. A file whose
// syntax tree contains errors is recorded with a warning and
// contributes zero edges; traversal continues.
func (e *pyExtractor) Extract(ctx context.Context, path string, src []byte) (*extract.Extraction, error) {
	out := &extract.Extraction{}

	tree, err := e.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		out.Warnings = append(out.Warnings, extract.Warningf(extract.WarnUnreadable, path, "parse: %v", err))
		return out, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		out.Warnings = append(out.Warnings, extract.Warningf(extract.WarnSyntax, path, "file contains syntax errors; no dependencies extracted"))
		return out, nil
	}

	modules := collectImports(root, src)

	seenLocal := make(map[string]bool)
	seenExternal := make(map[string]bool)
	for _, module := range modules {
		target, ok := ResolveModule(module, e.env.Roots)
		if ok {
			if e.env.Ignore.Ignored(target) {
				out.Warnings = append(out.Warnings, extract.Warningf(extract.WarnUnresolved, path,
					"module %s resolves to ignored file %s", module, target))
				continue
			}
			if !seenLocal[target] {
				seenLocal[target] = true
				out.Local = append(out.Local, target)
			}
			continue
		}

		top := strings.SplitN(module, ".", 2)[0]
		if IsStdlib(top) || seenExternal[top] {
			continue
		}
		seenExternal[top] = true
		out.External = append(out.External, extract.Package{Name: top})
	}

	return out, nil
}

// collectImports walks the whole tree (imports can appear inside
// functions and conditionals) and returns every absolute module name
// referenced by an import statement, in source order. Relative imports
// are skipped: they are resolved by the interpreter against the
// importing package, which the engine does not model.
func collectImports(node *sitter.Node, src []byte) []string {
	var modules []string

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				child := n.NamedChild(i)
				switch child.Type() {
				case "dotted_name":
					modules = append(modules, child.Content(src))
				case "aliased_import":
					if name := child.ChildByFieldName("name"); name != nil {
						modules = append(modules, name.Content(src))
					}
				}
			}
			return
		case "import_from_statement":
			if mod := n.ChildByFieldName("module_name"); mod != nil && mod.Type() == "dotted_name" {
				modules = append(modules, mod.Content(src))
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)

	return modules
}
