package imagecache

import (
	"strings"
	"testing"

	"github.com/veldran/sigil/internal/models"
)

func TestTransformSVG_CurrentColorReplaced(t *testing.T) {
	in := `<svg viewBox="0 0 24 24"><path fill="currentColor"/></svg>`
	out := transformSVG(in, "#112233", models.ThemeDark, 0)

	if strings.Contains(strings.ToLower(out), "currentcolor") {
		t.Errorf("currentColor still present: %s", out)
	}
	if !strings.Contains(out, `<path fill="#112233"/>`) {
		t.Errorf("path fill not substituted: %s", out)
	}
	if !strings.Contains(out, `width="24" height="24"`) {
		t.Errorf("background rect missing viewBox dimensions: %s", out)
	}
}

func TestTransformSVG_CaseInsensitiveToken(t *testing.T) {
	in := `<svg><path stroke="CURRENTCOLOR"/><path stroke="currentcolor"/></svg>`
	out := transformSVG(in, "#abcdef", models.ThemeLight, 0)
	if strings.Contains(strings.ToLower(out), "currentcolor") {
		t.Errorf("token not replaced everywhere: %s", out)
	}
	if strings.Count(out, "#abcdef") != 2 {
		t.Errorf("expected two substitutions: %s", out)
	}
}

func TestTransformSVG_InjectsRootFillWhenUnstyled(t *testing.T) {
	in := `<svg viewBox="0 0 16 16"><path d="M0 0h16"/></svg>`
	out := transformSVG(in, "#ff0000", models.ThemeDark, 0)
	if !strings.Contains(out, `<svg viewBox="0 0 16 16" fill="#ff0000">`) {
		t.Errorf("root fill not injected: %s", out)
	}
}

func TestTransformSVG_NoRootFillWhenStroked(t *testing.T) {
	in := `<svg viewBox="0 0 16 16"><path stroke="#000" d="M0 0h16"/></svg>`
	out := transformSVG(in, "#ff0000", models.ThemeDark, 0)
	if strings.Contains(out, `<svg viewBox="0 0 16 16" fill=`) {
		t.Errorf("root fill should not be injected when stroke present: %s", out)
	}
}

func TestTransformSVG_BackgroundPerTheme(t *testing.T) {
	in := `<svg viewBox="0 0 24 24"><path fill="none"/></svg>`

	dark := transformSVG(in, "#fff", models.ThemeDark, 0)
	if !strings.Contains(dark, `fill="`+backgroundOnDark+`"`) {
		t.Errorf("dark theme should get a white background: %s", dark)
	}

	light := transformSVG(in, "#fff", models.ThemeLight, 0)
	if !strings.Contains(light, `fill="`+backgroundOnLight+`"`) {
		t.Errorf("light theme should get a near-black background: %s", light)
	}

	hc := transformSVG(in, "#fff", models.ThemeHighContrast, 0)
	if !strings.Contains(hc, `fill="`+backgroundOnDark+`"`) {
		t.Errorf("high contrast should render like dark: %s", hc)
	}
}

func TestTransformSVG_BackgroundIsFirstChild(t *testing.T) {
	in := `<svg viewBox="0 0 24 24"><path fill="#000"/></svg>`
	out := transformSVG(in, "#fff", models.ThemeDark, 0)
	rectIdx := strings.Index(out, "<rect")
	pathIdx := strings.Index(out, "<path")
	if rectIdx < 0 || pathIdx < 0 || rectIdx > pathIdx {
		t.Errorf("rect must precede existing children: %s", out)
	}
	if !strings.Contains(out, `rx="2"`) {
		t.Errorf("rect missing corner radius: %s", out)
	}
}

func TestTransformSVG_BackgroundFromWidthHeight(t *testing.T) {
	in := `<svg width="32px" height="48"><path fill="#000"/></svg>`
	out := transformSVG(in, "#fff", models.ThemeDark, 0)
	if !strings.Contains(out, `<rect x="0" y="0" width="32" height="48"`) {
		t.Errorf("rect should use width/height attrs: %s", out)
	}
}

func TestTransformSVG_BackgroundDefault24(t *testing.T) {
	in := `<svg><path fill="#000"/></svg>`
	out := transformSVG(in, "#fff", models.ThemeDark, 0)
	if !strings.Contains(out, `width="24" height="24"`) {
		t.Errorf("rect should default to 24x24: %s", out)
	}
}

func TestTransformSVG_ViewBoxOffsetOrigin(t *testing.T) {
	in := `<svg viewBox="-4 -4 32 32"><path fill="#000"/></svg>`
	out := transformSVG(in, "#fff", models.ThemeDark, 0)
	if !strings.Contains(out, `<rect x="-4" y="-4" width="32" height="32"`) {
		t.Errorf("rect should honor viewBox origin: %s", out)
	}
}

func TestTransformSVG_RenderSizeOverridesDimensions(t *testing.T) {
	in := `<svg width="100" height="100" viewBox="0 0 24 24"><path fill="#000"/></svg>`
	out := transformSVG(in, "#fff", models.ThemeDark, 18)
	if strings.Contains(out, `width="100"`) || strings.Contains(out, `height="100"`) {
		t.Errorf("original dimensions should be stripped: %s", out)
	}
	if !strings.Contains(out, `width="18" height="18"`) {
		t.Errorf("render size not applied: %s", out)
	}
	// The background rect keeps the viewBox geometry.
	if !strings.Contains(out, `<rect x="0" y="0" width="24" height="24"`) {
		t.Errorf("rect geometry should follow viewBox, not render size: %s", out)
	}
}

func TestTransformSVG_SelfClosingRoot(t *testing.T) {
	in := `<svg viewBox="0 0 24 24"/>`
	out := transformSVG(in, "#fff", models.ThemeDark, 0)
	if !strings.Contains(out, "<rect") || !strings.Contains(out, "</svg>") {
		t.Errorf("self-closing root should be expanded around the rect: %s", out)
	}
}
