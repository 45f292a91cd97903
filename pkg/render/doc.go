// Package render writes resolved dependency trees.
//
// # Overview
//
// Renderers take the root [deps.Package] returned by the builder and write
// it to an io.Writer. They never modify the tree.
//
//   - [WriteText]: the indented one-line-per-node listing
//   - [WriteJSON]: nested JSON mirroring the tree
//   - [WriteGraphJSON]: flat node/edge lists of the deduplicated graph
//   - [ToDOT] and [RenderSVG]: Graphviz diagrams
//
// [Write] dispatches on a [Format] name as used by the CLI's --format flag.
//
// # Shared Nodes
//
// A module required by several parents is one node in memory. The text and
// nested JSON renderers expand it under every parent; the graph, DOT and SVG
// renderers draw it once.
//
// # Dependencies
//
// SVG output uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process without a system installation.
//
// [deps.Package]: github.com/matzehuels/deptree/pkg/deps.Package
package render
