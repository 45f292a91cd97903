package golang

import (
	"strings"

	deperrors "github.com/matzehuels/deptree/pkg/errors"
)

// GoModParser extracts requirements from go.mod text. It implements
// [deps.ManifestParser].
type GoModParser struct {
	// SkipIndirect drops requirements annotated "// indirect".
	SkipIndirect bool
}

// Parse implements [deps.ManifestParser].
func (p GoModParser) Parse(text string) ([]string, error) {
	return parseGoMod(text, p.SkipIndirect)
}

// ParseGoMod returns the requirements of a go.mod file as "module@version"
// strings, in order of appearance and with duplicates kept.
//
// Both forms are recognized:
//
//	require github.com/foo/bar v1.0.0 // indirect
//
//	require (
//	    github.com/foo/bar v1.0.0
//	)
//
// Requirements marked indirect are included. Text without require
// directives yields a nil slice. A block that is never closed, or a
// requirement with fewer than two tokens, is an INVALID_MANIFEST error.
func ParseGoMod(text string) ([]string, error) {
	return parseGoMod(text, false)
}

func parseGoMod(text string, skipIndirect bool) ([]string, error) {
	var reqs []string
	inBlock := false
	blockLine := 0

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line, comment := splitComment(raw)
		fields := strings.Fields(line)

		if inBlock {
			if len(fields) == 0 {
				continue
			}
			if strings.HasPrefix(fields[0], ")") {
				inBlock = false
				continue
			}
			req, err := requirement(fields, lineNo)
			if err != nil {
				return nil, err
			}
			if !(skipIndirect && isIndirect(comment)) {
				reqs = append(reqs, req)
			}
			continue
		}

		if len(fields) == 0 {
			continue
		}
		args, ok := requireArgs(fields)
		if !ok {
			continue
		}
		switch {
		case len(args) > 0 && args[0] == "()":
			// empty block
		case len(args) > 0 && args[0] == "(":
			inBlock = true
			blockLine = lineNo
		default:
			req, err := requirement(args, lineNo)
			if err != nil {
				return nil, err
			}
			if !(skipIndirect && isIndirect(comment)) {
				reqs = append(reqs, req)
			}
		}
	}

	if inBlock {
		return nil, deperrors.New(deperrors.ErrCodeInvalidManifest,
			"require block opened on line %d is never closed", blockLine)
	}
	return reqs, nil
}

// requireArgs reports whether fields start a require directive and returns
// the tokens after the keyword. "require(" is split into keyword and "(".
func requireArgs(fields []string) ([]string, bool) {
	switch {
	case fields[0] == "require":
		return fields[1:], true
	case strings.HasPrefix(fields[0], "require("):
		return append([]string{strings.TrimPrefix(fields[0], "require")}, fields[1:]...), true
	}
	return nil, false
}

func requirement(fields []string, lineNo int) (string, error) {
	if len(fields) < 2 {
		return "", deperrors.New(deperrors.ErrCodeInvalidManifest,
			"line %d: malformed requirement %q", lineNo, strings.Join(fields, " "))
	}
	mod := strings.Trim(fields[0], `"`)
	version := strings.Trim(fields[1], `"`)
	return mod + "@" + version, nil
}

func splitComment(line string) (code, comment string) {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i], line[i+2:]
	}
	return line, ""
}

func isIndirect(comment string) bool {
	c := strings.TrimSpace(comment)
	return c == "indirect" || strings.HasPrefix(c, "indirect;")
}
