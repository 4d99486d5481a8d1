package app

import (
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// settingsTheme pins the default theme to one variant and optionally
// overrides the text size.
type settingsTheme struct {
	base     fyne.Theme
	variant  fyne.ThemeVariant
	textSize float32
}

func newSettingsTheme(s Settings) *settingsTheme {
	variant := theme.VariantDark
	if strings.EqualFold(s.Theme, ThemeLight) {
		variant = theme.VariantLight
	}
	return &settingsTheme{base: theme.DefaultTheme(), variant: variant, textSize: s.FontSize}
}

func (t *settingsTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.base.Color(name, t.variant)
}

func (t *settingsTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *settingsTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *settingsTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameText && t.textSize > 0 {
		return t.textSize
	}
	return t.base.Size(name)
}
