package theme

// Color constants and ttk style setup for the labeling UI. InitStyles
// activates the base theme; SetDark switches between the light and dark palettes.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Colors is a resolved set of semantic colors.
type Colors struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Warning   string
	Text      string
	TextMuted string
}

var (
	light = Colors{
		AppBg:     "#f7f9fb",
		Surface:   "#ffffff",
		Border:    "#d0d7de",
		Primary:   "#2563eb",
		Danger:    "#dc2626",
		Accent:    "#10b981",
		Warning:   "#d97706",
		Text:      "#1e293b",
		TextMuted: "#64748b",
	}
	dark = Colors{
		AppBg:     "#0f172a",
		Surface:   "#1e293b",
		Border:    "#334155",
		Primary:   "#3b82f6",
		Danger:    "#ef4444",
		Accent:    "#10b981",
		Warning:   "#f59e0b",
		Text:      "#f1f5f9",
		TextMuted: "#94a3b8",
	}
)

// Style names used with Style(...).
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleModeButton    = "mode.TButton"
	StyleNoticeLabel   = "notice.TLabel"
	StyleStateLabel    = "state.TLabel"
	StyleDirtyLabel    = "dirty.TLabel"
)

var darkMode bool

// Current returns the palette for the active mode.
func Current() Colors {
	if darkMode {
		return dark
	}
	return light
}

// InitStyles (re)applies styles for the current mode.
func InitStyles() { applyStyles(Current()) }

// SetDark switches mode and reapplies styles.
func SetDark(on bool) bool {
	darkMode = on
	applyStyles(Current())
	return darkMode
}

// ToggleDark flips the mode.
func ToggleDark() bool { return SetDark(!darkMode) }

// IsDark reports the current mode.
func IsDark() bool { return darkMode }

func applyStyles(p Colors) {
	_ = ActivateTheme("azure light")
	App.Configure(Background(p.AppBg))

	button := func(name, bg string) {
		StyleConfigure(name,
			Background(bg),
			Foreground("white"),
			Padding("4p 3p"),
			Borderwidth(1),
			Relief("ridge"),
		)
	}
	button(StylePrimaryButton, p.Primary)
	button(StyleDangerButton, p.Danger)
	button(StyleModeButton, p.Accent)

	StyleConfigure(StyleNoticeLabel,
		Foreground(p.Primary),
		Background(p.Surface),
		Padding("2p 1p"),
	)
	StyleConfigure(StyleStateLabel,
		Foreground("white"),
		Background(p.Accent),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
	StyleConfigure(StyleDirtyLabel,
		Foreground(p.Warning),
		Background(p.Surface),
		Padding("2p 1p"),
	)
}
