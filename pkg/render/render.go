package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/deptree/pkg/deps"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
)

// Format names an output format.
type Format string

const (
	FormatText  Format = "text"  // Indented tree, one line per node
	FormatJSON  Format = "json"  // Nested JSON tree
	FormatGraph Format = "graph" // Flat JSON node and edge lists
	FormatDOT   Format = "dot"   // Graphviz DOT source
	FormatSVG   Format = "svg"   // Graphviz-rendered SVG
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatGraph, FormatDOT, FormatSVG}

// ParseFormat validates a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, known := range Formats {
		names[i] = string(known)
	}
	return "", deperrors.New(deperrors.ErrCodeInvalidInput,
		"unknown format %q (available: %s)", s, strings.Join(names, ", "))
}

// Write renders root to w in the given format.
func Write(ctx context.Context, w io.Writer, root *deps.Package, format Format) error {
	switch format {
	case FormatText, "":
		return WriteText(w, root)
	case FormatJSON:
		return WriteJSON(w, root)
	case FormatGraph:
		return WriteGraphJSON(w, root)
	case FormatDOT:
		_, err := io.WriteString(w, ToDOT(root, DOTOptions{Detailed: true}))
		return err
	case FormatSVG:
		svg, err := RenderSVG(ctx, ToDOT(root, DOTOptions{Detailed: true}))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
