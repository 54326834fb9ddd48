package panel

import (
	"image"
	"os"
	"os/exec"
	"strings"

	"github.com/tavren/waydesk/internal/config"
	"github.com/tavren/waydesk/internal/logger"
	"github.com/tavren/waydesk/internal/render"
	"github.com/tavren/waydesk/internal/toolkit"
)

// launcher is one clickable program icon on the panel. The configured path
// may carry leading KEY=VALUE words that become extra environment for the
// child.
type launcher struct {
	display *toolkit.Display
	widget  *toolkit.Widget

	path string
	args []string
	env  []string
	icon image.Image

	hovered bool
	pressed bool
}

func newLauncher(display *toolkit.Display, lc config.LauncherConfig) *launcher {
	path, args, env := parseCommand(lc.Path)
	return &launcher{
		display: display,
		path:    path,
		args:    args,
		env:     env,
		icon:    render.LoadIconOrFallback(lc.Icon),
	}
}

// parseCommand splits a launcher command line into environment prefix,
// executable and arguments.
func parseCommand(s string) (path string, args, env []string) {
	fields := strings.Fields(s)
	i := 0
	for ; i < len(fields); i++ {
		if !strings.Contains(fields[i], "=") {
			break
		}
		env = append(env, fields[i])
	}
	if i < len(fields) {
		path = fields[i]
		args = fields[i+1:]
	}
	return path, args, env
}

func (l *launcher) attach() {
	l.widget.SetRedrawHandler(l.redraw)
	l.widget.SetEnterHandler(func(wd *toolkit.Widget, x, y int) toolkit.Cursor {
		l.hovered = true
		wd.ScheduleRedraw()
		return toolkit.CursorLeftPtr
	})
	l.widget.SetLeaveHandler(func(wd *toolkit.Widget) {
		l.hovered = false
		l.pressed = false
		wd.ScheduleRedraw()
	})
	l.widget.SetButtonHandler(func(wd *toolkit.Widget, button uint32, state toolkit.ButtonState) {
		if button != toolkit.BtnLeft {
			return
		}
		switch state {
		case toolkit.ButtonPressed:
			l.pressed = true
			wd.ScheduleRedraw()
		case toolkit.ButtonReleased:
			if l.pressed {
				l.pressed = false
				wd.ScheduleRedraw()
				l.activate()
			}
		}
	})
}

func (l *launcher) redraw(wd *toolkit.Widget, img *image.RGBA) {
	r := wd.Allocation()
	if l.hovered {
		render.FillRect(img, r.Inset(-2), render.Color(0x40ffffff))
	}
	offset := 0
	if l.pressed {
		offset = 1
	}
	render.DrawIcon(img, l.icon, r.Min.X+offset, r.Min.Y+offset)
}

// activate starts the program and reaps it on a goroutine so failed or
// finished children never linger as zombies.
func (l *launcher) activate() {
	if l.path == "" {
		logger.Warn("Launcher has no executable configured")
		return
	}
	cmd := exec.Command(l.path, l.args...)
	cmd.Env = append(os.Environ(), l.env...)
	if err := cmd.Start(); err != nil {
		logger.Errorf("failed to start %s: %v", l.path, err)
		return
	}
	logger.Debugf("Started %s (pid %d)", l.path, cmd.Process.Pid)
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Warnf("%s exited: %v", l.path, err)
		}
	}()
}
