package panel

import (
	"image"

	"github.com/tavren/waydesk/internal/logger"
	"github.com/tavren/waydesk/internal/render"
	"github.com/tavren/waydesk/internal/toolkit"
)

// background paints the desktop backdrop: a solid color, optionally with
// an image scaled, cropped or tiled over it.
type background struct {
	img   image.Image
	typ   render.BackgroundType
	color render.Color
}

func newBackground(imagePath, colorStr, typeStr string) *background {
	color, err := render.ParseColor(colorStr)
	if err != nil {
		logger.Warnf("invalid background color %q: %v", colorStr, err)
		color = render.Color(0xff002244)
	}

	bg := &background{color: color, typ: render.BackgroundNone}
	if imagePath != "" {
		img, err := render.LoadImage(imagePath)
		if err != nil {
			logger.Warnf("background image unavailable: %v", err)
		} else {
			bg.img = img
			bg.typ = render.ParseBackgroundType(typeStr)
		}
	}
	return bg
}

func (b *background) redraw(wd *toolkit.Widget, img *image.RGBA) {
	render.DrawBackground(img, b.img, b.typ, b.color)
}
