package panel

import (
	"image"

	"github.com/tavren/waydesk/internal/render"
	"github.com/tavren/waydesk/internal/toolkit"
)

// switcher shows the active username on the panel. Left click locks the
// session to bring up the user list, right click logs out.
type switcher struct {
	widget   *toolkit.Widget
	username string

	onLock   func()
	onLogout func()

	hovered bool
}

func newSwitcher(username string, onLock, onLogout func()) *switcher {
	return &switcher{username: username, onLock: onLock, onLogout: onLogout}
}

func (s *switcher) attach() {
	s.widget.SetRedrawHandler(s.redraw)
	s.widget.SetEnterHandler(func(wd *toolkit.Widget, x, y int) toolkit.Cursor {
		s.hovered = true
		wd.ScheduleRedraw()
		return toolkit.CursorLeftPtr
	})
	s.widget.SetLeaveHandler(func(wd *toolkit.Widget) {
		s.hovered = false
		wd.ScheduleRedraw()
	})
	s.widget.SetButtonHandler(func(wd *toolkit.Widget, button uint32, state toolkit.ButtonState) {
		switch {
		case button == toolkit.BtnLeft && state == toolkit.ButtonReleased:
			if s.onLock != nil {
				s.onLock()
			}
		case button == toolkit.BtnRight && state == toolkit.ButtonPressed:
			if s.onLogout != nil {
				s.onLogout()
			}
		}
	})
}

func (s *switcher) redraw(wd *toolkit.Widget, img *image.RGBA) {
	r := wd.Allocation()
	if s.hovered {
		render.FillRect(img, r, render.Color(0x40ffffff))
	}
	render.DrawText(img, r.Min.X+edgePadding, r.Min.Y+20, s.username, render.Color(0xffffffff))
}
