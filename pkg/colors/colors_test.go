package colors

import (
	"math"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
		ok   bool
	}{
		{"#2980b9", RGB{0x29, 0x80, 0xb9}, true},
		{"ffffff", RGB{255, 255, 255}, true},
		{" #000000 ", RGB{}, true},
		{"#fff", RGB{}, false},
		{"#zzzzzz", RGB{}, false},
		{"", RGB{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseHex(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseHex(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if got := (RGB{0x29, 0x80, 0xb9}).Hex(); got != "#2980b9" {
		t.Errorf("Hex() = %q", got)
	}
}

func TestContrast(t *testing.T) {
	if got := Contrast(white, black); math.Abs(got-21) > 0.01 {
		t.Errorf("Contrast(white, black) = %v, want 21", got)
	}
	if got := Contrast(black, white); math.Abs(got-21) > 0.01 {
		t.Errorf("Contrast is not symmetric: %v", got)
	}
	if got := Contrast(white, white); got != 1 {
		t.Errorf("Contrast(white, white) = %v, want 1", got)
	}
}

func TestLightenDarken(t *testing.T) {
	c := RGB{100, 100, 100}
	if got := c.Lighten(1); got != white {
		t.Errorf("Lighten(1) = %v", got)
	}
	if got := c.Darken(1); got != black {
		t.Errorf("Darken(1) = %v", got)
	}
	if got := c.Lighten(0); got != c {
		t.Errorf("Lighten(0) = %v", got)
	}
	if got := c.Darken(2); got != black {
		t.Errorf("Darken clamps amount: %v", got)
	}
}

func TestTextOn(t *testing.T) {
	if got := TextOn(RGB{0x29, 0x80, 0xb9}); got != white {
		t.Errorf("TextOn(blue) = %v, want white", got)
	}
	if got := TextOn(RGB{0xf1, 0xc4, 0x0f}); got != black {
		t.Errorf("TextOn(yellow) = %v, want black", got)
	}
}

func TestEnsureContrast(t *testing.T) {
	bg := RGB{0x33, 0x33, 0x33}
	fg := RGB{0x44, 0x44, 0x44}
	got := EnsureContrast(fg, bg, 4.5)
	if Contrast(got, bg) < 4.5 {
		t.Errorf("EnsureContrast gave %v with ratio %v", got, Contrast(got, bg))
	}

	ok := RGB{0xee, 0xee, 0xee}
	if got := EnsureContrast(ok, bg, 4.5); got != ok {
		t.Errorf("EnsureContrast changed a passing color to %v", got)
	}
}

func TestDerive(t *testing.T) {
	for _, dark := range []bool{true, false} {
		p := Derive("#2980b9", dark)
		if p.HeaderBg != "#2980b9" {
			t.Errorf("dark=%v HeaderBg = %q", dark, p.HeaderBg)
		}
		fg, _ := ParseHex(p.PanelFg)
		bg, _ := ParseHex(p.PanelBg)
		if Contrast(fg, bg) < 4.5 {
			t.Errorf("dark=%v panel contrast %v", dark, Contrast(fg, bg))
		}
	}
	if Derive("#2980b9", true).Text != "#ffffff" {
		t.Error("dark terminals get light text")
	}
	if Derive("#2980b9", false).Text != "#000000" {
		t.Error("light terminals get dark text")
	}
	if Derive("nonsense", true) != Derive(DefaultBase, true) {
		t.Error("invalid base falls back to DefaultBase")
	}
}

func TestDarkBackgroundOverride(t *testing.T) {
	if !DarkBackground(ModeDark) {
		t.Error("ModeDark")
	}
	if DarkBackground(ModeLight) {
		t.Error("ModeLight")
	}
	t.Setenv("COLORFGBG", "0;15")
	if DarkBackground(ModeAuto) {
		t.Error("COLORFGBG 0;15 is a light background")
	}
	t.Setenv("COLORFGBG", "15;0")
	if !DarkBackground(ModeAuto) {
		t.Error("COLORFGBG 15;0 is a dark background")
	}
}

func TestFromCOLORFGBG(t *testing.T) {
	tests := []struct {
		in       string
		dark, ok bool
	}{
		{"15;0", true, true},
		{"0;15", false, true},
		{"15;default;0", true, true},
		{"0;16", true, true},
		{"", false, false},
		{"15", false, false},
		{"a;b", false, false},
	}
	for _, tt := range tests {
		dark, ok := fromCOLORFGBG(tt.in)
		if dark != tt.dark || ok != tt.ok {
			t.Errorf("fromCOLORFGBG(%q) = %v, %v; want %v, %v", tt.in, dark, ok, tt.dark, tt.ok)
		}
	}
}
