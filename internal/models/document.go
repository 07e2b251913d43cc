// Package models defines the core domain types shared across the pipeline.
package models

import "strings"

// Document is a source file under resolution: a URI (project-relative
// path for local documents) plus its full text.
type Document struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
}

// Position is a zero-based (line, column) location within a document.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Location is a definition target: a document URI and the position of
// the declaration within it.
type Location struct {
	URI      string   `json:"uri"`
	Position Position `json:"position"`
}

// PreviewRef is a preview reference extracted from a documentation
// block: either a remote http(s) URL or an embedded data URI.
type PreviewRef string

// IsEmbedded reports whether the reference carries an inline payload
// rather than a remote URL.
func (r PreviewRef) IsEmbedded() bool {
	return strings.HasPrefix(string(r), "data:")
}
