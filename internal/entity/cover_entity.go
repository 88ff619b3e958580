package entity

import (
	"fmt"
	"strings"
)

type PaletteColor string

const (
	PaletteBlue   PaletteColor = "blue"
	PaletteGreen  PaletteColor = "green"
	PaletteRed    PaletteColor = "red"
	PalettePurple PaletteColor = "purple"
	PaletteOrange PaletteColor = "orange"
	PaletteTeal   PaletteColor = "teal"
	PalettePink   PaletteColor = "pink"
	PaletteGray   PaletteColor = "gray"

	DefaultPalette = PaletteBlue

	CustomCoverKey = "custom"
)

var paletteSwatches = map[PaletteColor]string{
	PaletteBlue:   "linear-gradient(135deg, #4f8cff 0%, #2a5bd7 100%)",
	PaletteGreen:  "linear-gradient(135deg, #3ecf8e 0%, #1f9d63 100%)",
	PaletteRed:    "linear-gradient(135deg, #ff6b6b 0%, #d63c3c 100%)",
	PalettePurple: "linear-gradient(135deg, #9b6bff 0%, #6a3fd1 100%)",
	PaletteOrange: "linear-gradient(135deg, #ffa94d 0%, #e8741a 100%)",
	PaletteTeal:   "linear-gradient(135deg, #38d9c9 0%, #11998e 100%)",
	PalettePink:   "linear-gradient(135deg, #f783ac 0%, #d6336c 100%)",
	PaletteGray:   "linear-gradient(135deg, #adb5bd 0%, #6c757d 100%)",
}

// Palette lists the fixed palette in display order.
func Palette() []PaletteColor {
	return []PaletteColor{
		PaletteBlue, PaletteGreen, PaletteRed, PalettePurple,
		PaletteOrange, PaletteTeal, PalettePink, PaletteGray,
	}
}

func (p PaletteColor) Valid() bool {
	_, ok := paletteSwatches[p]
	return ok
}

type CoverKind int

const (
	CoverPalette CoverKind = iota
	CoverCustom
)

// Cover is either Palette(color) or Custom(imageData). The zero value is the
// default palette cover.
type Cover struct {
	kind  CoverKind
	color PaletteColor
	image string
}

func PaletteCover(color PaletteColor) Cover {
	return Cover{kind: CoverPalette, color: color}
}

// CustomCover wraps an image data URI.
func CustomCover(imageData string) (Cover, error) {
	if !strings.HasPrefix(imageData, "data:image/") {
		return Cover{}, fmt.Errorf("%w: custom cover must be a data:image URI", ErrInvalidCover)
	}
	return Cover{kind: CoverCustom, image: imageData}, nil
}

// ParseCover builds a cover from its stored key and optional custom payload.
func ParseCover(key, customData string) (Cover, error) {
	if key == CustomCoverKey {
		return CustomCover(customData)
	}
	if key == "" {
		return PaletteCover(DefaultPalette), nil
	}
	color := PaletteColor(key)
	if !color.Valid() {
		return Cover{}, fmt.Errorf("%w: unknown palette key %q", ErrInvalidCover, key)
	}
	return PaletteCover(color), nil
}

func (c Cover) Kind() CoverKind {
	return c.kind
}

func (c Cover) Color() (PaletteColor, bool) {
	if c.kind != CoverPalette {
		return "", false
	}
	if c.color == "" {
		return DefaultPalette, true
	}
	return c.color, true
}

func (c Cover) Image() (string, bool) {
	if c.kind != CoverCustom {
		return "", false
	}
	return c.image, true
}

// Key is the persisted discriminator: a palette key or "custom".
func (c Cover) Key() string {
	if c.kind == CoverCustom {
		return CustomCoverKey
	}
	color, _ := c.Color()
	return string(color)
}

// Background renders the cover as a CSS background value.
func (c Cover) Background() string {
	if img, ok := c.Image(); ok {
		return fmt.Sprintf("url(%q) center / cover no-repeat", img)
	}
	color, _ := c.Color()
	if swatch, ok := paletteSwatches[color]; ok {
		return swatch
	}
	return paletteSwatches[DefaultPalette]
}
