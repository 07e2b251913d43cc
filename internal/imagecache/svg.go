package imagecache

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/veldran/sigil/internal/models"
)

// Background colors injected behind icons so they stay visible against
// the editor surface.
const (
	backgroundOnDark  = "#ffffff"
	backgroundOnLight = "#1e1e1e"
)

var (
	currentColorRe = regexp.MustCompile(`(?i)currentColor`)
	strokeOrFillRe = regexp.MustCompile(`(?:stroke|fill)\s*=`)
	svgOpenTagRe   = regexp.MustCompile(`<svg\b[^>]*>`)
	viewBoxRe      = regexp.MustCompile(`viewBox\s*=\s*"\s*([\d.+-]+)[ ,]+([\d.+-]+)[ ,]+([\d.+-]+)[ ,]+([\d.+-]+)\s*"`)
	widthAttrRe    = regexp.MustCompile(`\swidth\s*=\s*"([^"]*)"`)
	heightAttrRe   = regexp.MustCompile(`\sheight\s*=\s*"([^"]*)"`)
	numberRe       = regexp.MustCompile(`[\d.]+`)
)

// transformSVG adapts raw SVG text for rendering: substitutes the
// symbolic current color, guarantees a visible fill, composites a
// theme-contrasting background rectangle, and optionally pins the
// render size.
func transformSVG(svg, color string, theme models.Theme, renderSize int) string {
	svg = currentColorRe.ReplaceAllString(svg, color)

	// Without any stroke or fill the icon would render invisible on
	// some backgrounds; pin a fill on the root element.
	if !strokeOrFillRe.MatchString(svg) {
		svg = injectRootAttr(svg, fmt.Sprintf(` fill="%s"`, color))
	}

	svg = injectBackground(svg, theme)

	if renderSize > 0 {
		svg = setRootSize(svg, renderSize)
	}
	return svg
}

// injectRootAttr appends attrs to the root <svg> open tag.
func injectRootAttr(svg, attrs string) string {
	replaced := false
	return svgOpenTagRe.ReplaceAllStringFunc(svg, func(tag string) string {
		if replaced {
			return tag
		}
		replaced = true
		if strings.HasSuffix(tag, "/>") {
			return tag[:len(tag)-2] + attrs + "/>"
		}
		return tag[:len(tag)-1] + attrs + ">"
	})
}

// injectBackground inserts a rounded background rect sized to the SVG's
// viewBox (or width/height attributes, defaulting to 24×24) as the first
// child of the root element.
func injectBackground(svg string, theme models.Theme) string {
	bg := backgroundOnLight
	if theme.IsDark() {
		bg = backgroundOnDark
	}

	x, y, w, h := "0", "0", "24", "24"
	if m := viewBoxRe.FindStringSubmatch(svg); m != nil {
		x, y, w, h = m[1], m[2], m[3], m[4]
	} else {
		if m := widthAttrRe.FindStringSubmatch(svg); m != nil {
			if n := numberRe.FindString(m[1]); n != "" {
				w = n
			}
		}
		if m := heightAttrRe.FindStringSubmatch(svg); m != nil {
			if n := numberRe.FindString(m[1]); n != "" {
				h = n
			}
		}
	}

	rect := fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" rx="2" fill="%s"/>`, x, y, w, h, bg)

	loc := svgOpenTagRe.FindStringIndex(svg)
	if loc == nil {
		return svg
	}
	tag := svg[loc[0]:loc[1]]
	if strings.HasSuffix(tag, "/>") {
		// Self-closing root: expand so the rect has somewhere to live.
		open := tag[:len(tag)-2] + ">"
		return svg[:loc[0]] + open + rect + "</svg>" + svg[loc[1]:]
	}
	return svg[:loc[1]] + rect + svg[loc[1]:]
}

// setRootSize strips any width/height attributes from the root open tag
// and pins both to the requested pixel size.
func setRootSize(svg string, size int) string {
	loc := svgOpenTagRe.FindStringIndex(svg)
	if loc == nil {
		return svg
	}
	tag := svg[loc[0]:loc[1]]
	tag = widthAttrRe.ReplaceAllString(tag, "")
	tag = heightAttrRe.ReplaceAllString(tag, "")
	svg = svg[:loc[0]] + tag + svg[loc[1]:]
	return injectRootAttr(svg, fmt.Sprintf(` width="%d" height="%d"`, size, size))
}
