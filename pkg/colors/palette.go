// Package colors derives the chrome palette from a single base color.
package colors

import (
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

// DefaultBase is used when no base color is configured or it cannot be
// parsed.
const DefaultBase = "#2980b9"

// Palette holds the hex colors of each chrome surface.
type Palette struct {
	HeaderBg string
	HeaderFg string
	PanelBg  string
	PanelFg  string
	Text     string
	Muted    string
	Accent   string
}

// Derive builds a palette from base. On dark terminals panels are a darkened
// base, on light terminals a lightened one.
func Derive(base string, dark bool) Palette {
	c, ok := ParseHex(base)
	if !ok {
		c, _ = ParseHex(DefaultBase)
	}
	term := white
	panel := c.Lighten(0.75)
	if dark {
		term = black
		panel = c.Darken(0.6)
	}
	return Palette{
		HeaderBg: c.Hex(),
		HeaderFg: TextOn(c).Hex(),
		PanelBg:  panel.Hex(),
		PanelFg:  EnsureContrast(c, panel, 4.5).Hex(),
		Text:     TextOn(term).Hex(),
		Muted:    EnsureContrast(RGB{0x80, 0x80, 0x80}, term, 3).Hex(),
		Accent:   EnsureContrast(RGB{0x27, 0xae, 0x60}, term, 3).Hex(),
	}
}

// Mode overrides background detection.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
)

// DarkBackground reports whether the terminal background is dark. COLORFGBG
// is checked first, then termenv's query. Unknown means dark.
func DarkBackground(mode Mode) bool {
	switch mode {
	case ModeDark:
		return true
	case ModeLight:
		return false
	}
	if dark, ok := fromCOLORFGBG(os.Getenv("COLORFGBG")); ok {
		return dark
	}
	out := termenv.NewOutput(os.Stdout)
	if _, none := out.BackgroundColor().(termenv.NoColor); none {
		return true
	}
	return out.HasDarkBackground()
}

// fromCOLORFGBG parses "fg;bg". ANSI 0-7 (and 16) are dark.
func fromCOLORFGBG(v string) (dark bool, ok bool) {
	parts := strings.Split(v, ";")
	if len(parts) < 2 {
		return false, false
	}
	bg, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return false, false
	}
	return bg < 8 || bg == 16, true
}
