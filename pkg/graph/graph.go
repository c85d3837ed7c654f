// Package graph serializes resolved file-dependency graphs.
//
// The JSON format is the canonical interchange shape for a resolved
// closure: one node per included file (keyed by output-relative path)
// and one edge per local dependency. It is deterministic — identical
// runs produce byte-identical output — and can be rendered to DOT,
// SVG, or PNG for inspection.
package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/carvekit/carve/pkg/extract"
)

// Graph is the serialization format for a resolved dependency graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one included file.
type Node struct {
	ID      string   `json:"id"`                // output-relative path
	Lang    string   `json:"lang,omitempty"`    // detected language tag
	Entries []string `json:"entries,omitempty"` // entry points that reached the file
}

// Edge is a directed local dependency between two nodes.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FromResult converts an extraction result into its serialization
// format. Nodes are ordered by relative path and edges by endpoint
// pair, so output is stable across runs. When two files collide on the
// same relative path, the first in result order keeps the node ID and
// the other is dropped along with its edges, mirroring what the
// materialized output contains.
func FromResult(res *extract.Result) Graph {
	rel := make(map[string]string, res.Len())
	taken := make(map[string]bool, res.Len())
	var g Graph

	for _, f := range res.Files() {
		if taken[f.Rel] {
			continue
		}
		taken[f.Rel] = true
		rel[f.Path] = f.Rel
		g.Nodes = append(g.Nodes, Node{ID: f.Rel, Lang: f.Lang, Entries: f.Entries})
	}

	for _, e := range res.Edges() {
		from, okFrom := rel[e.From]
		to, okTo := rel[e.To]
		if !okFrom || !okTo {
			continue
		}
		g.Edges = append(g.Edges, Edge{From: from, To: to})
	}

	return g
}

// Write encodes the graph as indented JSON.
func Write(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// WriteFile writes the graph to a JSON file.
func WriteFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// Read decodes a JSON graph.
func Read(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, fmt.Errorf("decode graph: %w", err)
	}
	return g, nil
}

// ReadFile reads a JSON graph file.
func ReadFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
