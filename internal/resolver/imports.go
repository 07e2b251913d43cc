// Package resolver scans documents for imported, tag-used component
// symbols and extracts preview references from their declarations.
package resolver

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Matches default and brace-named import forms, tolerating named lists
// that span multiple lines.
var importRe = regexp.MustCompile(`import\s+(?:([A-Za-z_$][\w$]*)\s*,?\s*)?(?:\{([\s\S]*?)\})?\s*from\s+['"]([^'"]+)['"]`)

// ImportedSymbol is a component candidate collected from an import
// statement. Derived per scan, never persisted.
type ImportedSymbol struct {
	Name    string
	Module  string
	Default bool
}

// ScanImports collects component candidates from every import statement
// in text. Only names starting with an uppercase letter are kept (the
// component naming convention). For aliased named imports (`X as Y`)
// the exported name X is recorded, not the local binding.
func ScanImports(text string) []ImportedSymbol {
	var out []ImportedSymbol
	seen := make(map[string]struct{})

	add := func(name, module string, isDefault bool) {
		if !startsUpper(name) {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, ImportedSymbol{Name: name, Module: module, Default: isDefault})
	}

	for _, m := range importRe.FindAllStringSubmatch(text, -1) {
		module := m[3]
		if m[1] != "" {
			add(m[1], module, true)
		}
		if m[2] == "" {
			continue
		}
		for _, entry := range strings.Split(m[2], ",") {
			fields := strings.Fields(entry)
			if len(fields) == 0 {
				continue
			}
			// `X as Y` keeps the exported name X.
			add(fields[0], module, false)
		}
	}
	return out
}

func startsUpper(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
