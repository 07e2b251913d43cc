package models

// Display positions for rendered markers.
const (
	PositionGutter = "gutter"
	PositionInline = "inline"
)

// Theme identifies the host color theme.
type Theme string

// Recognized themes. High contrast renders like dark.
const (
	ThemeDark         Theme = "dark"
	ThemeLight        Theme = "light"
	ThemeHighContrast Theme = "high-contrast"
)

// IsDark reports whether the theme needs a light background behind icons.
func (t Theme) IsDark() bool {
	return t == ThemeDark || t == ThemeHighContrast
}

// CacheSuffix returns the theme component of cache filenames.
// High contrast shares dark's entries since the transform is identical.
func (t Theme) CacheSuffix() string {
	if t.IsDark() {
		return "dark"
	}
	return "light"
}

// Valid reports whether t is one of the recognized themes.
func (t Theme) Valid() bool {
	switch t {
	case ThemeDark, ThemeLight, ThemeHighContrast:
		return true
	}
	return false
}

// ResolvedPreview is one resolver result: a usage position paired with
// the preview reference extracted from the symbol's declaration.
type ResolvedPreview struct {
	Symbol    string     `json:"symbol"`
	Line      int        `json:"line"`
	Column    int        `json:"column"`
	EndColumn int        `json:"end_column"`
	Ref       PreviewRef `json:"reference"`
}

// Marker is a fully materialized decoration: a resolved preview whose
// reference has been turned into a locally cached image file.
type Marker struct {
	URI       string     `json:"uri"`
	Symbol    string     `json:"symbol"`
	Line      int        `json:"line"`
	Column    int        `json:"column"`
	EndColumn int        `json:"end_column"`
	Ref       PreviewRef `json:"reference"`
	ImagePath string     `json:"image_path"`
	ImageName string     `json:"image_name"`
}
