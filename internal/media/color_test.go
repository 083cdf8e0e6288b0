package media

import (
	"image"
	"image/color"
	"testing"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDominantColorSolid(t *testing.T) {
	tests := []struct {
		name  string
		color color.NRGBA
		want  string
	}{
		{"exact black", color.NRGBA{0, 0, 0, 255}, "#000000"},
		{"exact red", color.NRGBA{255, 0, 0, 255}, "#FF0000"},
		{"exact orange", color.NRGBA{255, 165, 0, 255}, "#FFA500"},
		{"near red", color.NRGBA{250, 12, 8, 255}, "#FF0000"},
		{"near blue", color.NRGBA{10, 20, 230, 255}, "#0000FF"},
		{"near gray", color.NRGBA{120, 130, 125, 255}, "#808080"},
		{"near white", color.NRGBA{245, 250, 240, 255}, "#FFFFFF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DominantColor(solidImage(120, 80, tt.color))
			if got != tt.want {
				t.Errorf("DominantColor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDominantColorMajorityWins(t *testing.T) {
	img := solidImage(100, 100, color.NRGBA{0, 0, 255, 255})
	for y := 0; y < 100; y++ {
		for x := 75; x < 100; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
		}
	}

	if got := DominantColor(img); got != "#0000FF" {
		t.Errorf("DominantColor() = %s, want #0000FF", got)
	}
}

func TestDominantColorIgnoresTransparent(t *testing.T) {
	// Mostly transparent white, with an opaque green stripe.
	img := solidImage(100, 100, color.NRGBA{255, 255, 255, 0})
	for y := 0; y < 100; y++ {
		for x := 0; x < 10; x++ {
			img.SetNRGBA(x, y, color.NRGBA{0, 128, 0, 255})
		}
	}

	if got := DominantColor(img); got != "#008000" {
		t.Errorf("DominantColor() = %s, want #008000", got)
	}

	// Entirely transparent images still produce a colour.
	empty := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	if got := DominantColor(empty); got != "#000000" {
		t.Errorf("DominantColor(transparent) = %s, want #000000", got)
	}
}

func TestNearestPaletteColor(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    string
	}{
		{0, 0, 0, "#000000"},
		{255, 192, 203, "#FFC0CB"},
		{165, 42, 42, "#A52A2A"},
		{130, 0, 130, "#800080"},
		{0, 250, 250, "#00FFFF"},
		{0, 120, 0, "#008000"},
		{250, 250, 10, "#FFFF00"},
	}
	for _, tt := range tests {
		if got := NearestPaletteColor(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("NearestPaletteColor(%d,%d,%d) = %s, want %s", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestPaletteHex(t *testing.T) {
	got := PaletteHex()
	if len(got) != len(Palette) {
		t.Fatalf("Expected %d entries, got %d", len(Palette), len(got))
	}
	if got[0] != "#000000" || got[3] != "#FF0000" {
		t.Errorf("Unexpected palette order: %v", got)
	}
}
