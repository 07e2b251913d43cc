package resolver

import (
	"regexp"
	"strings"

	"github.com/veldran/sigil/internal/models"
)

// FindUsages locates every tag-opening occurrence of name (`<Name`
// followed by whitespace, `/`, or `>`) in text. Each returned position
// points just past the `<`, at the start of the name.
func FindUsages(text, name string) []models.Position {
	re := regexp.MustCompile(`<` + regexp.QuoteMeta(name) + `[\s/>]`)
	var out []models.Position
	for _, loc := range re.FindAllStringIndex(text, -1) {
		out = append(out, positionAt(text, loc[0]+1))
	}
	return out
}

// positionAt converts a character offset into a zero-based (line,
// column) position.
func positionAt(text string, offset int) models.Position {
	before := text[:offset]
	line := strings.Count(before, "\n")
	column := offset
	if nl := strings.LastIndexByte(before, '\n'); nl >= 0 {
		column = offset - nl - 1
	}
	return models.Position{Line: line, Column: column}
}
