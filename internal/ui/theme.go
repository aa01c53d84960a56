// Package ui provides the Jajaero application UI components.
//
// This file defines a compact Fyne theme honoring the preferred light/dark variant.

package ui

import (
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// JajaeroTheme wraps the default Fyne theme with compact sizing overrides.
// Unless a variant is forced, the variant requested by the system is used.
type JajaeroTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	forced  bool
}

// NewJajaeroTheme creates a theme for a preference value: "light", "dark"
// or anything else for the system default.
func NewJajaeroTheme(preference string) *JajaeroTheme {
	t := &JajaeroTheme{base: theme.DefaultTheme()}
	t.SetPreference(preference)
	return t
}

// SetPreference updates the variant from a preference value.
func (t *JajaeroTheme) SetPreference(preference string) {
	t.variant, t.forced = variantFromPreference(preference)
}

func variantFromPreference(preference string) (fyne.ThemeVariant, bool) {
	switch strings.ToLower(strings.TrimSpace(preference)) {
	case "light":
		return theme.VariantLight, true
	case "dark":
		return theme.VariantDark, true
	default:
		return 0, false
	}
}

// Color delegates to the base theme with the effective variant.
func (t *JajaeroTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.forced {
		variant = t.variant
	}
	return t.base.Color(name, variant)
}

// Font delegates to the base theme.
func (t *JajaeroTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

// Icon delegates to the base theme.
func (t *JajaeroTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides.
func (t *JajaeroTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 13
	case theme.SizeNameCaptionText:
		return 10
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}
