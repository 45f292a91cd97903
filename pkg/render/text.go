package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/deptree/pkg/deps"
)

const indentUnit = "  "

// WriteText writes root and its dependencies to w, one line per node in
// depth-first pre-order, indented two spaces per level:
//
//	Package { name: bar, owner: foo, version: v1.0.0, license: MIT }
//	  Package { name: qux, owner: baz, version: v2.0.0, license: MIT }
//
// Shared nodes are written under every parent.
func WriteText(w io.Writer, root *deps.Package) error {
	if root == nil {
		return nil
	}
	bw := bufio.NewWriter(w)

	type frame struct {
		pkg   *deps.Package
		depth int
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := writeNode(bw, f.pkg, f.depth); err != nil {
			return err
		}
		for i := len(f.pkg.Dependencies) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.pkg.Dependencies[i], f.depth + 1})
		}
	}
	return bw.Flush()
}

// writeNode writes the single line for p at the given depth.
func writeNode(w io.Writer, p *deps.Package, depth int) error {
	_, err := fmt.Fprintf(w, "%sPackage { name: %s, owner: %s, version: %s, license: %s }\n",
		strings.Repeat(indentUnit, depth), p.Name, p.Owner, p.Version, p.License)
	return err
}
