package resolver

import (
	"regexp"

	"github.com/veldran/sigil/internal/models"
)

var (
	// Generic preview tag: decorative dashes and an optional "img"
	// label before the URL are tolerated.
	genericPreviewRe = regexp.MustCompile(`@preview[ \t]*-*[ \t]*(?:img\s+)?(https?://\S+)`)

	embeddedPayload = `data:image/[\w.+-]+;base64,[A-Za-z0-9+/=]+`
)

// ExtractPreview pulls a preview reference for symbol out of a
// declaration file's text. Two tiers:
//
//  1. A documentation block that explicitly names the symbol
//     (`@name <Symbol>`) followed later by an `@preview` tag carrying an
//     embedded image, optionally trailed by a dash-separated fallback
//     URL.
//  2. Failing that, if the file independently declares the symbol
//     (exported const/function/class), the first generic `@preview` URL
//     anywhere in the file. The existence gate trades precision for
//     recall when doc blocks do not repeat the symbol name.
func ExtractPreview(declText, symbol string) (models.PreviewRef, bool) {
	if ref, ok := namedPreview(declText, symbol); ok {
		return ref, true
	}
	if !declaresSymbol(declText, symbol) {
		return "", false
	}
	if m := genericPreviewRe.FindStringSubmatch(declText); m != nil {
		return models.PreviewRef(m[1]), true
	}
	return "", false
}

// namedPreview matches the exact-name tier.
func namedPreview(declText, symbol string) (models.PreviewRef, bool) {
	re := regexp.MustCompile(
		`@name\s+` + regexp.QuoteMeta(symbol) + `\b[\s\S]*?` +
			`@preview\s+(` + embeddedPayload + `)(?:\s*-+\s*https?://\S+)?`)
	if m := re.FindStringSubmatch(declText); m != nil {
		return models.PreviewRef(m[1]), true
	}
	return "", false
}

// declaresSymbol reports whether declText contains an export-qualified
// const/function/class declaration of symbol.
func declaresSymbol(declText, symbol string) bool {
	re := regexp.MustCompile(
		`(?m)^\s*export\s+(?:default\s+)?(?:const|(?:async\s+)?function\*?|class)\s+` +
			regexp.QuoteMeta(symbol) + `\b`)
	return re.MatchString(declText)
}
