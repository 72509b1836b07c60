package view

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/soocke/pixel-label-go/ui/images"
	"github.com/soocke/pixel-label-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ClassHandlers receives class list commands.
type ClassHandlers struct {
	Select func(i int)
	Add    func(name string)
	Rename func(i int, name string)
	Remove func(i int)
}

// ClassPanel lists classes in a combobox, shows the selected class in its
// overlay color and edits the list through a name field.
type ClassPanel struct {
	logger   *slog.Logger
	names    []string
	selected int
	combo    *TComboboxWidget
	swatch   *LabelWidget
	nameText *TextWidget
	typing   func(bool)
}

// NewClassPanel builds the panel inside parent starting at row and returns the
// next free row. typing is told when the name field gains or loses focus.
func NewClassPanel(parent *FrameWidget, row int, h ClassHandlers, typing func(bool), logger *slog.Logger) (*ClassPanel, int) {
	p := &ClassPanel{logger: logger, selected: -1, typing: typing}

	Grid(Label(Txt("Class"), Anchor("w")), In(parent), Row(row), Column(0), Columnspan(3), Sticky("w"), Padx("0.4m"))
	row++
	p.combo = TCombobox(Values([]string{"<none>"}), Width(18))
	Grid(p.combo, In(parent), Row(row), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	Bind(p.combo, "<<ComboboxSelected>>", Command(func() {
		if i, ok := p.current(); ok && h.Select != nil {
			h.Select(i)
		}
	}))
	row++
	p.swatch = Label(Txt("no class selected"), Borderwidth(1), Relief("ridge"))
	Grid(p.swatch, In(parent), Row(row), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	row++

	p.nameText = Text(Height(1), Width(18))
	Grid(p.nameText, In(parent), Row(row), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	Bind(p.nameText, "<FocusIn>", Command(func() { p.setTyping(true) }))
	Bind(p.nameText, "<FocusOut>", Command(func() { p.setTyping(false) }))
	row++

	add := Button(Txt("Add"), Command(func() {
		if name := p.takeName(); name != "" && h.Add != nil {
			h.Add(name)
		}
	}))
	rename := Button(Txt("Rename"), Command(func() {
		if p.selected < 0 || h.Rename == nil {
			return
		}
		if name := p.takeName(); name != "" {
			h.Rename(p.selected, name)
		}
	}))
	remove := TButton(Txt("Remove"), Style(theme.StyleDangerButton), Command(func() {
		if p.selected >= 0 && h.Remove != nil {
			h.Remove(p.selected)
		}
	}))
	Grid(add, In(parent), Row(row), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.15m"))
	Grid(rename, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.15m"))
	Grid(remove, In(parent), Row(row), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.15m"))
	row++
	return p, row
}

// SetClasses refreshes the list and the selection swatch.
func (p *ClassPanel) SetClasses(names []string, selected int) {
	if p == nil || p.combo == nil {
		return
	}
	if !slices.Equal(p.names, names) {
		p.names = append(p.names[:0], names...)
		values := names
		if len(values) == 0 {
			values = []string{"<none>"}
		}
		p.combo.Configure(Values(values))
	}
	p.selected = selected
	if selected < 0 || selected >= len(names) {
		p.swatch.Configure(Txt("no class selected"), Background(theme.Current().Surface), Foreground(theme.Current().TextMuted))
		return
	}
	p.combo.Current(selected)
	p.swatch.Configure(Txt(strconv.Itoa(selected+1)+": "+names[selected]), Background(images.ClassHex(selected)), Foreground("white"))
}

func (p *ClassPanel) current() (int, bool) {
	s := p.combo.Current(nil)
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || i >= len(p.names) {
		if p.logger != nil && err != nil {
			p.logger.Debug("class selection parse error", "value", s, "error", err)
		}
		return 0, false
	}
	return i, true
}

func (p *ClassPanel) takeName() string {
	name := strings.TrimSpace(strings.Join(p.nameText.Get("1.0", END), ""))
	p.nameText.Delete("1.0", END)
	return name
}

func (p *ClassPanel) setTyping(on bool) {
	if p.typing != nil {
		p.typing(on)
	}
}
