package symbolindex

import (
	"bytes"
	"regexp"
)

// Declaration is one export-qualified declaration found in a source
// file. Line and Column are zero-based and point at the declared name.
type Declaration struct {
	Name   string
	Kind   string
	Line   int
	Column int
}

// Regex-based extraction is best-effort by design: it covers the
// declaration forms the preview fallback tier recognizes, nothing more.
var declPatterns = []struct {
	kind string
	re   *regexp.Regexp
}{
	{"class", regexp.MustCompile(`(?m)^[\t ]*export\s+(?:default\s+)?class\s+([A-Za-z_$][\w$]*)`)},
	{"function", regexp.MustCompile(`(?m)^[\t ]*export\s+(?:default\s+)?(?:async\s+)?function\*?\s+([A-Za-z_$][\w$]*)`)},
	{"const", regexp.MustCompile(`(?m)^[\t ]*export\s+const\s+([A-Za-z_$][\w$]*)`)},
	{"var", regexp.MustCompile(`(?m)^[\t ]*export\s+(?:let|var)\s+([A-Za-z_$][\w$]*)`)},
}

// ScanDeclarations extracts exported declarations from raw source.
func ScanDeclarations(data []byte) []Declaration {
	var out []Declaration
	for _, p := range declPatterns {
		for _, idx := range p.re.FindAllSubmatchIndex(data, -1) {
			nameStart, nameEnd := idx[2], idx[3]
			line, col := lineCol(data, nameStart)
			out = append(out, Declaration{
				Name:   string(data[nameStart:nameEnd]),
				Kind:   p.kind,
				Line:   line,
				Column: col,
			})
		}
	}
	return out
}

// lineCol converts a byte offset to a zero-based (line, column) pair.
func lineCol(data []byte, offset int) (int, int) {
	before := data[:offset]
	line := bytes.Count(before, []byte("\n"))
	col := offset
	if nl := bytes.LastIndexByte(before, '\n'); nl >= 0 {
		col = offset - nl - 1
	}
	return line, col
}
