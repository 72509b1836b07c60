package assets

import (
	_ "embed"
	"strings"
)

// ShortcutsText lists the keyboard and mouse bindings shown in the help window.
//
//go:embed shortcuts.txt
var ShortcutsText string

// Shortcuts returns the binding lines without trailing blanks.
func Shortcuts() []string {
	return strings.Split(strings.TrimRight(ShortcutsText, "\n"), "\n")
}
