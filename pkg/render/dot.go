package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/deptree/pkg/deps"
)

// DOTOptions configures Graphviz output.
type DOTOptions struct {
	// Detailed adds owner and license lines to node labels.
	// When false, labels show name and version only.
	Detailed bool
}

// ToDOT converts the graph reachable from root to Graphviz DOT. Each
// distinct module is one node, so shared dependencies appear once with
// several incoming edges. Modules with an unknown license are drawn dashed.
func ToDOT(root *deps.Package, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if root == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	var edges []string
	walk(root, func(p *deps.Package) {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(p), strings.Join(fmtAttrs(p, opts.Detailed), ", "))
		seen := make(map[*deps.Package]bool)
		for _, d := range p.Dependencies {
			if seen[d] {
				continue
			}
			seen[d] = true
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", nodeID(p), nodeID(d)))
		}
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(p *deps.Package, detailed bool) string {
	label := p.Name + "\n" + p.Version
	if !detailed {
		return label
	}
	if p.Owner != "" {
		label += "\nowner: " + p.Owner
	}
	return label + "\nlicense: " + p.License
}

func fmtAttrs(p *deps.Package, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(p, detailed))}
	if p.License == deps.UnknownLicense {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the image scales from its
// viewBox instead of Graphviz's point-based width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
