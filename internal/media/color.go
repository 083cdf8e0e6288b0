package media

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// sampleSize is the edge length of the grid images are reduced to before
// counting colours.
const sampleSize = 50

// Palette is the fixed set of colours dominant colours snap to. Order matters:
// on equal distance the earlier entry wins.
var Palette = []color.RGBA{
	{0x00, 0x00, 0x00, 0xff}, // black
	{0xff, 0xff, 0xff, 0xff}, // white
	{0x80, 0x80, 0x80, 0xff}, // gray
	{0xff, 0x00, 0x00, 0xff}, // red
	{0xff, 0xa5, 0x00, 0xff}, // orange
	{0xff, 0xff, 0x00, 0xff}, // yellow
	{0x00, 0x80, 0x00, 0xff}, // green
	{0x00, 0xff, 0xff, 0xff}, // cyan
	{0x00, 0x00, 0xff, 0xff}, // blue
	{0x80, 0x00, 0x80, 0xff}, // purple
	{0xff, 0xc0, 0xcb, 0xff}, // pink
	{0xa5, 0x2a, 0x2a, 0xff}, // brown
}

// PaletteHex returns the palette as upper-case #RRGGBB strings.
func PaletteHex() []string {
	out := make([]string, len(Palette))
	for i, c := range Palette {
		out[i] = hexColor(c.R, c.G, c.B)
	}
	return out
}

func hexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

type rgb struct{ r, g, b uint8 }

// DominantColor reduces img to a 50x50 grid, picks the most frequent exact
// colour and returns the nearest palette entry as #RRGGBB. Fully transparent
// pixels are ignored unless the whole image is transparent.
func DominantColor(img image.Image) string {
	small := imaging.Resize(img, sampleSize, sampleSize, imaging.NearestNeighbor)

	counts := make(map[rgb]int)
	var best rgb
	bestCount := 0

	tally := func(skipTransparent bool) {
		pix := small.Pix
		for i := 0; i+3 < len(pix); i += 4 {
			if skipTransparent && pix[i+3] == 0 {
				continue
			}
			c := rgb{pix[i], pix[i+1], pix[i+2]}
			counts[c]++
			if counts[c] > bestCount {
				best, bestCount = c, counts[c]
			}
		}
	}

	tally(true)
	if bestCount == 0 {
		tally(false)
	}

	return nearestPaletteHex(best)
}

// NearestPaletteColor snaps an RGB value to the palette by squared Euclidean
// distance.
func NearestPaletteColor(r, g, b uint8) string {
	return nearestPaletteHex(rgb{r, g, b})
}

func nearestPaletteHex(c rgb) string {
	bestIdx := 0
	bestDist := -1
	for i, p := range Palette {
		dr := int(c.r) - int(p.R)
		dg := int(c.g) - int(p.G)
		db := int(c.b) - int(p.B)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			bestIdx, bestDist = i, d
		}
	}
	p := Palette[bestIdx]
	return hexColor(p.R, p.G, p.B)
}
