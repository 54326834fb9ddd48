package panel

import (
	"image"

	"github.com/tavren/waydesk/internal/render"
	"github.com/tavren/waydesk/internal/toolkit"
)

const (
	iconSize    = 20
	iconSpacing = 36
	edgePadding = 6
)

// panel is the top strip: launchers on the left, the user switcher and
// clock on the right.
type panel struct {
	window *toolkit.Window
	color  render.Color

	launchers []*launcher
	switcher  *switcher
	clock     *clock
}

func (p *panel) redraw(root *toolkit.Widget, img *image.RGBA) {
	render.Fill(img, p.color)
}

func (p *panel) layout(root *toolkit.Widget, width, height int) {
	x := edgePadding
	for _, l := range p.launchers {
		l.widget.SetAllocation(x, edgePadding, iconSize, iconSize)
		x += iconSpacing
	}

	clockWidth := render.TextWidth("00:00") + 2*edgePadding
	p.clock.widget.SetAllocation(width-clockWidth-edgePadding, 0, clockWidth, height)

	swWidth := render.TextWidth(p.switcher.username) + 2*edgePadding
	p.switcher.widget.SetAllocation(width-clockWidth-swWidth-2*edgePadding, 0, swWidth, height)
}
