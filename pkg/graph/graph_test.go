package graph

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/carvekit/carve/pkg/extract"
)

func newTestResult() *extract.Result {
	res := extract.NewResult()
	res.AddFile(&extract.File{Path: "/src/main.py", Rel: "main.py", Lang: "python", Entries: []string{"/src/main.py"}})
	res.AddFile(&extract.File{Path: "/src/helper.py", Rel: "helper.py", Lang: "python", Entries: []string{"/src/main.py"}})
	res.AddEdge("/src/main.py", "/src/helper.py")
	return res
}

func TestFromResult(t *testing.T) {
	g := FromResult(newTestResult())

	if len(g.Nodes) != 2 {
		t.Fatalf("Nodes = %v, want 2", g.Nodes)
	}
	// Files() orders by relative path, so helper.py precedes main.py.
	if g.Nodes[0].ID != "helper.py" || g.Nodes[1].ID != "main.py" {
		t.Errorf("node order = %s, %s; want helper.py, main.py", g.Nodes[0].ID, g.Nodes[1].ID)
	}

	if len(g.Edges) != 1 {
		t.Fatalf("Edges = %v, want 1", g.Edges)
	}
	if g.Edges[0].From != "main.py" || g.Edges[0].To != "helper.py" {
		t.Errorf("edge = %v, endpoints should use relative paths", g.Edges[0])
	}
}

func TestFromResultDropsUnknownEndpoints(t *testing.T) {
	res := newTestResult()
	res.AddEdge("/src/main.py", "/src/never-included.py")

	g := FromResult(res)
	if len(g.Edges) != 1 {
		t.Errorf("Edges = %v, edges to files outside the closure must be dropped", g.Edges)
	}
}

func TestFromResultCollidingRelPaths(t *testing.T) {
	res := extract.NewResult()
	res.AddFile(&extract.File{Path: "/a/util.py", Rel: "util.py", Lang: "python"})
	res.AddFile(&extract.File{Path: "/b/util.py", Rel: "util.py", Lang: "python"})
	res.AddFile(&extract.File{Path: "/a/main.py", Rel: "main.py", Lang: "python"})
	res.AddEdge("/a/main.py", "/a/util.py")
	res.AddEdge("/a/main.py", "/b/util.py")

	g := FromResult(res)

	if len(g.Nodes) != 2 {
		t.Fatalf("Nodes = %v, colliding relative paths must yield one node", g.Nodes)
	}
	// Files() breaks the tie by absolute path, so /a/util.py keeps the ID.
	if len(g.Edges) != 1 || g.Edges[0].To != "util.py" {
		t.Errorf("Edges = %v, want the single surviving edge to util.py", g.Edges)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	g := FromResult(newTestResult())
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := WriteFile(g, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !reflect.DeepEqual(g, got) {
		t.Errorf("round trip mismatch:\nwrote %+v\nread  %+v", g, got)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile("/nonexistent/graph.json"); err == nil {
		t.Error("ReadFile() should fail for a missing file")
	}
}
