// Package panel draws the per-output chrome: the panel strip with its
// launchers, clock and user switcher, and the background surface behind
// the desktop.
package panel

import (
	"fmt"

	"github.com/tavren/waydesk/internal/config"
	"github.com/tavren/waydesk/internal/logger"
	"github.com/tavren/waydesk/internal/render"
	"github.com/tavren/waydesk/internal/toolkit"
)

// Builder constructs chrome windows for a user. OnLock and OnLogout are
// invoked from the user switcher on the panel.
type Builder struct {
	display *toolkit.Display
	cfg     *config.Config

	OnLock   func()
	OnLogout func()
}

// NewBuilder creates a chrome builder over the display.
func NewBuilder(display *toolkit.Display, cfg *config.Config) *Builder {
	return &Builder{display: display, cfg: cfg}
}

// BuildBackground creates the background window for a user. The image is
// loaded once at build time; repaints only redraw.
func (b *Builder) BuildBackground(username string) (*toolkit.Window, error) {
	w, err := b.display.NewWindow("background")
	if err != nil {
		return nil, fmt.Errorf("failed to create background window: %w", err)
	}

	imagePath, colorStr := b.cfg.BackgroundFor(username)
	bg := newBackground(imagePath, colorStr, b.cfg.Shell.BackgroundType)

	root := w.AddWidget(bg)
	root.SetRedrawHandler(bg.redraw)
	return w, nil
}

// BuildPanel creates the panel window for a user with that user's
// launchers, the clock and the user switcher.
func (b *Builder) BuildPanel(username string) (*toolkit.Window, error) {
	w, err := b.display.NewWindow("panel")
	if err != nil {
		return nil, fmt.Errorf("failed to create panel window: %w", err)
	}

	color, err := render.ParseColor(b.cfg.Shell.PanelColor)
	if err != nil {
		logger.Warnf("invalid panel color %q: %v", b.cfg.Shell.PanelColor, err)
		color = render.Color(0xaa000000)
	}

	p := &panel{window: w, color: color}
	root := w.AddWidget(p)
	root.SetRedrawHandler(p.redraw)
	root.SetResizeHandler(p.layout)

	launchers := b.cfg.LaunchersFor(username)
	if len(launchers) == 0 {
		launchers = []config.LauncherConfig{{Path: "weston-terminal"}}
	}
	for _, lc := range launchers {
		l := newLauncher(b.display, lc)
		if l.path == "" {
			logger.Warnf("skipping launcher with no executable: %q", lc.Path)
			continue
		}
		l.widget = root.AddWidget(l)
		l.attach()
		p.launchers = append(p.launchers, l)
	}

	sw := newSwitcher(username, b.OnLock, b.OnLogout)
	sw.widget = root.AddWidget(sw)
	sw.attach()
	p.switcher = sw

	c := newClock(b.display)
	c.widget = root.AddWidget(c)
	c.start()
	p.clock = c

	return w, nil
}
