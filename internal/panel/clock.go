package panel

import (
	"image"
	"time"

	"github.com/tavren/waydesk/internal/render"
	"github.com/tavren/waydesk/internal/toolkit"
)

// clock shows the wall time on the panel, repainted once a minute.
type clock struct {
	display *toolkit.Display
	widget  *toolkit.Widget
	stop    chan struct{}
	stopped bool
}

func newClock(display *toolkit.Display) *clock {
	return &clock{display: display, stop: make(chan struct{})}
}

func (c *clock) start() {
	c.widget.SetRedrawHandler(c.redraw)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.display.Post(c.tick)
			case <-c.stop:
				return
			}
		}
	}()
}

// tick runs on the event loop; once the owning window is gone the ticker
// goroutine is shut down. Ticks already queued when the window dies still
// arrive, so the shutdown must be idempotent.
func (c *clock) tick() {
	if c.stopped {
		return
	}
	if c.widget.Window().Destroyed() {
		c.stopped = true
		close(c.stop)
		return
	}
	c.widget.ScheduleRedraw()
}

func (c *clock) redraw(wd *toolkit.Widget, img *image.RGBA) {
	r := wd.Allocation()
	now := time.Now().Format("15:04")
	render.DrawText(img, r.Min.X+edgePadding, r.Min.Y+20, now, render.Color(0xffffffff))
}
