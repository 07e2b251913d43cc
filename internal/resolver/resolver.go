package resolver

import (
	"context"
	"log/slog"

	"github.com/veldran/sigil/internal/models"
)

// DefinitionProvider resolves a (document, position) pair to zero or
// more declaration locations. An empty result is not an error.
type DefinitionProvider interface {
	Definitions(ctx context.Context, doc models.Document, pos models.Position) ([]models.Location, error)
}

// DocumentOpener loads the text of a document by URI.
type DocumentOpener interface {
	OpenDocument(ctx context.Context, uri string) (string, error)
}

// Resolver drives the symbol-to-preview pipeline for one document.
type Resolver struct {
	defs   DefinitionProvider
	docs   DocumentOpener
	logger *slog.Logger
}

// New creates a resolver over the given lookup capabilities.
func New(defs DefinitionProvider, docs DocumentOpener, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{defs: defs, docs: docs, logger: logger}
}

// Resolve scans doc for imported component usages and extracts a
// preview reference for each. Failures are contained per usage: a dead
// definition lookup, unreadable declaration file, or absent preview tag
// skips that usage and never aborts the pass. Results are deduplicated
// by (line, end-column); the first usage resolved at a position wins.
func (r *Resolver) Resolve(ctx context.Context, doc models.Document) ([]models.ResolvedPreview, error) {
	var out []models.ResolvedPreview
	resolved := make(map[[2]int]struct{})

	for _, sym := range ScanImports(doc.Text) {
		for _, pos := range FindUsages(doc.Text, sym.Name) {
			if err := ctx.Err(); err != nil {
				return out, err
			}

			endCol := pos.Column + len(sym.Name)
			key := [2]int{pos.Line, endCol}
			if _, dup := resolved[key]; dup {
				continue
			}

			ref, ok := r.resolveUsage(ctx, doc, sym.Name, pos)
			if !ok {
				continue
			}
			resolved[key] = struct{}{}
			out = append(out, models.ResolvedPreview{
				Symbol:    sym.Name,
				Line:      pos.Line,
				Column:    pos.Column,
				EndColumn: endCol,
				Ref:       ref,
			})
		}
	}
	return out, nil
}

// resolveUsage runs definition lookup, declaration fetch, and preview
// extraction for one usage site.
func (r *Resolver) resolveUsage(ctx context.Context, doc models.Document, symbol string, pos models.Position) (models.PreviewRef, bool) {
	locs, err := r.defs.Definitions(ctx, doc, pos)
	if err != nil {
		r.logger.Warn("resolver: definition lookup failed",
			slog.String("symbol", symbol),
			slog.Int("line", pos.Line),
			slog.String("error", err.Error()))
		return "", false
	}
	if len(locs) == 0 {
		r.logger.Debug("resolver: no definition",
			slog.String("symbol", symbol), slog.Int("line", pos.Line))
		return "", false
	}

	target := locs[0]
	declText, err := r.docs.OpenDocument(ctx, target.URI)
	if err != nil {
		r.logger.Warn("resolver: open declaration failed",
			slog.String("symbol", symbol),
			slog.String("uri", target.URI),
			slog.String("error", err.Error()))
		return "", false
	}

	ref, ok := ExtractPreview(declText, symbol)
	if !ok {
		r.logger.Debug("resolver: no preview tag",
			slog.String("symbol", symbol), slog.String("uri", target.URI))
		return "", false
	}
	return ref, true
}
