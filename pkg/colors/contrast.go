package colors

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// ParseHex reads "#rrggbb" or "rrggbb".
func ParseHex(s string) (RGB, bool) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
}

// Hex formats c as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Luminance is the WCAG relative luminance, 0 for black and 1 for white.
func (c RGB) Luminance() float64 {
	return 0.2126*linear(c.R) + 0.7152*linear(c.G) + 0.0722*linear(c.B)
}

func linear(v uint8) float64 {
	f := float64(v) / 255
	if f <= 0.03928 {
		return f / 12.92
	}
	return math.Pow((f+0.055)/1.055, 2.4)
}

// Contrast is the WCAG contrast ratio between two colors, from 1 to 21.
func Contrast(a, b RGB) float64 {
	la, lb := a.Luminance(), b.Luminance()
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// Lighten moves c toward white by amount (0..1).
func (c RGB) Lighten(amount float64) RGB {
	amount = clamp01(amount)
	step := func(v uint8) uint8 { return v + uint8(float64(255-v)*amount) }
	return RGB{step(c.R), step(c.G), step(c.B)}
}

// Darken moves c toward black by amount (0..1).
func (c RGB) Darken(amount float64) RGB {
	amount = clamp01(amount)
	step := func(v uint8) uint8 { return uint8(float64(v) * (1 - amount)) }
	return RGB{step(c.R), step(c.G), step(c.B)}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

var (
	white = RGB{255, 255, 255}
	black = RGB{0, 0, 0}
)

// TextOn picks white or black for text on bg. White wins whenever it reaches
// 3:1 (large text), so saturated backgrounds get light text.
func TextOn(bg RGB) RGB {
	if Contrast(white, bg) >= 3 {
		return white
	}
	return black
}

// EnsureContrast pushes fg away from bg in 10% steps until the ratio reaches
// minRatio. It gives up with black or white.
func EnsureContrast(fg, bg RGB, minRatio float64) RGB {
	if Contrast(fg, bg) >= minRatio {
		return fg
	}
	lighter := fg.Luminance() > bg.Luminance()
	for amount := 0.1; amount <= 1.0; amount += 0.1 {
		adjusted := fg.Darken(amount)
		if lighter {
			adjusted = fg.Lighten(amount)
		}
		if Contrast(adjusted, bg) >= minRatio {
			return adjusted
		}
	}
	if bg.Luminance() > 0.5 {
		return black
	}
	return white
}
