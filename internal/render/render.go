// Package render draws the panel and background pixels. It owns no state;
// the shell core decides what to draw and when.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/tavren/waydesk/internal/logger"
)

// BackgroundType selects how a background image is mapped onto an output.
type BackgroundType int

const (
	BackgroundScale BackgroundType = iota
	BackgroundScaleCrop
	BackgroundTile
	// BackgroundNone disables image rendering; the solid color is used.
	BackgroundNone
)

// ParseBackgroundType maps the config string to a type. Unknown values log
// a warning and disable image rendering rather than failing startup.
func ParseBackgroundType(s string) BackgroundType {
	switch s {
	case "scale":
		return BackgroundScale
	case "scale-crop":
		return BackgroundScaleCrop
	case "tile":
		return BackgroundTile
	default:
		logger.Warnf("invalid background-type: %s", s)
		return BackgroundNone
	}
}

// Color is a 32-bit ARGB color, 0xAARRGGBB, matching the config format.
type Color uint32

// ParseColor parses a 0x-prefixed hex ARGB value.
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(v), nil
}

// NRGBA converts to the stdlib color type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(c >> 16),
		G: uint8(c >> 8),
		B: uint8(c),
		A: uint8(c >> 24),
	}
}

// Fill paints the whole image with a solid color.
func Fill(dst *image.RGBA, c Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c.NRGBA()), image.Point{}, draw.Src)
}

// FillRect paints one rectangle of the image with a solid color.
func FillRect(dst *image.RGBA, r image.Rectangle, c Color) {
	draw.Draw(dst, r, image.NewUniform(c.NRGBA()), image.Point{}, draw.Src)
}

// LoadImage decodes a background or icon image from disk.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// LoadIconOrFallback loads an icon image, substituting a built-in
// placeholder when the file is missing or undecodable.
func LoadIconOrFallback(path string) image.Image {
	if path != "" {
		img, err := LoadImage(path)
		if err == nil {
			return img
		}
		logger.Errorf("error loading icon from file '%s': %v", path, err)
	}
	return fallbackIcon()
}

// fallbackIcon draws a 20x20 grey square with a black cross.
func fallbackIcon() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	grey := color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	draw.Draw(img, img.Bounds(), image.NewUniform(grey), image.Point{}, draw.Src)
	black := color.NRGBA{A: 0xff}
	for i := 4; i <= 16; i++ {
		img.Set(i, i, black)
		img.Set(i, 20-i, black)
	}
	return img
}

// DrawBackground renders a background image onto dst according to the
// configured type. A nil image, or BackgroundNone, leaves the color fill.
func DrawBackground(dst *image.RGBA, img image.Image, typ BackgroundType, c Color) {
	Fill(dst, c)
	if img == nil || typ == BackgroundNone {
		return
	}

	db := dst.Bounds()
	sb := img.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 || db.Dx() == 0 || db.Dy() == 0 {
		return
	}

	switch typ {
	case BackgroundScale:
		xdraw.ApproxBiLinear.Scale(dst, db, img, sb, xdraw.Src, nil)
	case BackgroundScaleCrop:
		sx := float64(db.Dx()) / float64(sb.Dx())
		sy := float64(db.Dy()) / float64(sb.Dy())
		s := sx
		if sy > s {
			s = sy
		}
		cropW := int(float64(db.Dx()) / s)
		cropH := int(float64(db.Dy()) / s)
		x0 := sb.Min.X + (sb.Dx()-cropW)/2
		y0 := sb.Min.Y + (sb.Dy()-cropH)/2
		crop := image.Rect(x0, y0, x0+cropW, y0+cropH)
		xdraw.ApproxBiLinear.Scale(dst, db, img, crop, xdraw.Src, nil)
	case BackgroundTile:
		for y := db.Min.Y; y < db.Max.Y; y += sb.Dy() {
			for x := db.Min.X; x < db.Max.X; x += sb.Dx() {
				r := image.Rect(x, y, x+sb.Dx(), y+sb.Dy()).Intersect(db)
				draw.Draw(dst, r, img, sb.Min, draw.Src)
			}
		}
	}
}

// DrawIcon paints an icon image at the given position.
func DrawIcon(dst *image.RGBA, icon image.Image, x, y int) {
	b := icon.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(dst, r, icon, b.Min, draw.Over)
}

// DrawText renders a line of text at (x, y) using the built-in bitmap face;
// y is the text baseline.
func DrawText(dst *image.RGBA, x, y int, text string, c Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c.NRGBA()),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// TextWidth measures a string in the built-in face.
func TextWidth(text string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(text).Ceil()
}
