package render

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/deptree/pkg/deps"
)

// WriteJSON writes root as an indented, nested JSON tree. Shared nodes are
// expanded under every parent, like [WriteText].
func WriteJSON(w io.Writer, root *deps.Package) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(root)
}

type graph struct {
	Root  string `json:"root"`
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID      string `json:"id"`
	Path    string `json:"path,omitempty"`
	Name    string `json:"name"`
	Owner   string `json:"owner,omitempty"`
	Version string `json:"version"`
	License string `json:"license"`
	Source  string `json:"source"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteGraphJSON writes the deduplicated graph reachable from root as flat
// node and edge lists. Node ids are "path@version"; nodes and edges are
// listed in pre-order of first visit. A requirement repeated in one
// manifest yields a single edge, as in [ToDOT].
func WriteGraphJSON(w io.Writer, root *deps.Package) error {
	out := graph{Nodes: []node{}, Edges: []edge{}}
	if root != nil {
		out.Root = nodeID(root)
		walk(root, func(p *deps.Package) {
			out.Nodes = append(out.Nodes, node{
				ID:      nodeID(p),
				Path:    p.Path,
				Name:    p.Name,
				Owner:   p.Owner,
				Version: p.Version,
				License: p.License,
				Source:  p.Source,
			})
			seen := make(map[*deps.Package]bool)
			for _, d := range p.Dependencies {
				if seen[d] {
					continue
				}
				seen[d] = true
				out.Edges = append(out.Edges, edge{From: nodeID(p), To: nodeID(d)})
			}
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// nodeID is the module path at its version; trees built by hand without a
// Path fall back to the source location.
func nodeID(p *deps.Package) string {
	if p.Path == "" {
		return p.Source + "@" + p.Version
	}
	return p.Path + "@" + p.Version
}

// walk visits every distinct node reachable from root once, in pre-order.
func walk(root *deps.Package, visit func(*deps.Package)) {
	seen := make(map[*deps.Package]bool)
	stack := []*deps.Package{root}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[p] {
			continue
		}
		seen[p] = true
		visit(p)
		for i := len(p.Dependencies) - 1; i >= 0; i-- {
			stack = append(stack, p.Dependencies[i])
		}
	}
}
