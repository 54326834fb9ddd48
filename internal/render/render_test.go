package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"0xaa000000", 0xaa000000, false},
		{"0xff112233", 0xff112233, false},
		{"ff112233", 0xff112233, false},
		{" 0xff112233 ", 0xff112233, false},
		{"not-a-color", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorNRGBA(t *testing.T) {
	c := Color(0xaa112233)
	assert.Equal(t, color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xaa}, c.NRGBA())
}

func TestParseBackgroundType(t *testing.T) {
	assert.Equal(t, BackgroundScale, ParseBackgroundType("scale"))
	assert.Equal(t, BackgroundScaleCrop, ParseBackgroundType("scale-crop"))
	assert.Equal(t, BackgroundTile, ParseBackgroundType("tile"))
	// Unknown values degrade to none instead of failing
	assert.Equal(t, BackgroundNone, ParseBackgroundType("stretch"))
	assert.Equal(t, BackgroundNone, ParseBackgroundType(""))
}

func TestDrawBackgroundTile(t *testing.T) {
	// 2x2 source: top-left pixel red, rest transparent black
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 0xff, A: 0xff})

	dst := image.NewRGBA(image.Rect(0, 0, 6, 4))
	DrawBackground(dst, src, BackgroundTile, 0xff000000)

	// The red pixel repeats at every even coordinate
	for y := 0; y < 4; y += 2 {
		for x := 0; x < 6; x += 2 {
			r, _, _, _ := dst.At(x, y).RGBA()
			assert.NotZero(t, r, "expected red tile pixel at %d,%d", x, y)
		}
	}
}

func TestDrawBackgroundNoneKeepsColor(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	DrawBackground(dst, src, BackgroundNone, 0xff0000ff)

	_, _, b, _ := dst.At(1, 1).RGBA()
	assert.NotZero(t, b, "solid color fill expected when type is none")
}

func TestDrawBackgroundScaleFillsDst(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetNRGBA(x, y, color.NRGBA{G: 0xff, A: 0xff})
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	DrawBackground(dst, src, BackgroundScale, 0xff000000)

	_, g, _, _ := dst.At(7, 7).RGBA()
	assert.NotZero(t, g, "scaled image should cover the whole destination")
}

func TestTextWidth(t *testing.T) {
	assert.Zero(t, TextWidth(""))
	assert.Greater(t, TextWidth("Guest"), 0)
	assert.Greater(t, TextWidth("longer string"), TextWidth("short"))
}
