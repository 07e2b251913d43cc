package symbolindex

import (
	"context"
	"strings"

	"github.com/veldran/sigil/internal/models"
)

// Locator adapts the index to the resolver's definition-lookup
// contract: it extracts the identifier at the queried position and
// returns its indexed declaration sites.
type Locator struct {
	db SymbolIndex
}

// NewLocator creates a locator over idx.
func NewLocator(idx SymbolIndex) *Locator {
	return &Locator{db: idx}
}

// Definitions resolves the identifier at pos to declaration locations.
// An unknown identifier yields an empty result, not an error.
func (l *Locator) Definitions(_ context.Context, doc models.Document, pos models.Position) ([]models.Location, error) {
	name := identifierAt(doc.Text, pos)
	if name == "" {
		return nil, nil
	}
	return l.db.Lookup(name)
}

// identifierAt returns the identifier starting at pos, or "".
func identifierAt(text string, pos models.Position) string {
	lines := strings.Split(text, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	if pos.Column < 0 || pos.Column >= len(line) {
		return ""
	}
	end := pos.Column
	for end < len(line) && isIdentByte(line[end]) {
		end++
	}
	return line[pos.Column:end]
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
