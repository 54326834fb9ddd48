package shell

import (
	"github.com/tavren/waydesk/internal/logger"
	"github.com/tavren/waydesk/internal/toolkit"
)

// SurfacePair is one user's chrome on one output: the background fill and
// the panel strip. Pairs are cached per user so switching back to a user
// reuses the windows already drawn for them.
type SurfacePair struct {
	background *toolkit.Window
	panel      *toolkit.Window

	paintedBackground bool
	paintedPanel      bool
}

func (p *SurfacePair) painted() bool {
	return p.paintedBackground && p.paintedPanel
}

func (p *SurfacePair) destroy() {
	if p.background != nil {
		p.background.Destroy()
	}
	if p.panel != nil {
		p.panel.Destroy()
	}
}

// Output tracks one compositor output and the chrome pairs built for it.
type Output struct {
	name   uint32
	handle OutputHandle

	transform int32
	scale     int32

	active *SurfacePair
	pairs  map[string]*SurfacePair
}

func (o *Output) destroy() {
	for _, p := range o.pairs {
		p.destroy()
	}
	o.pairs = make(map[string]*SurfacePair)
	o.active = nil
}

// initOutput builds the current user's chrome on a newly usable output and
// registers it with the compositor.
func (d *Desktop) initOutput(o *Output) {
	d.bindSurfaces(o, d.currentUser)
}

// bindSurfaces makes username's chrome the active pair on the output,
// creating it on first use and re-registering cached windows otherwise.
func (d *Desktop) bindSurfaces(o *Output, username string) {
	pair, ok := o.pairs[username]
	if !ok {
		pair = d.buildPair(o, username)
		if pair == nil {
			return
		}
		o.pairs[username] = pair
	}
	o.active = pair
	// Registration is idempotent on the compositor side, so cached pairs
	// are simply announced again.
	d.proto.SetBackground(o.handle, pair.background.Surface())
	d.proto.SetPanel(o.handle, pair.panel.Surface())
	pair.background.ScheduleRedraw()
	pair.panel.ScheduleRedraw()
}

func (d *Desktop) buildPair(o *Output, username string) *SurfacePair {
	background, err := d.builder.BuildBackground(username)
	if err != nil {
		logger.Errorf("failed to build background for %q: %v", username, err)
		return nil
	}
	panel, err := d.builder.BuildPanel(username)
	if err != nil {
		logger.Errorf("failed to build panel for %q: %v", username, err)
		background.Destroy()
		return nil
	}

	background.SetUserData(roleBackground)
	panel.SetUserData(rolePanel)
	background.SetBufferTransform(o.transform)
	background.SetBufferScale(o.scale)
	panel.SetBufferTransform(o.transform)
	panel.SetBufferScale(o.scale)

	pair := &SurfacePair{background: background, panel: panel}
	// A resize invalidates the previous paint; readiness waits for the
	// repaint at the new size.
	background.AddResizeListener(func(width, height int) {
		pair.paintedBackground = false
	})
	panel.AddResizeListener(func(width, height int) {
		pair.paintedPanel = false
	})
	background.SetPaintHandler(func() {
		pair.paintedBackground = true
		d.checkReadiness()
	})
	panel.SetPaintHandler(func() {
		pair.paintedPanel = true
		d.checkReadiness()
	})
	return pair
}

// SetOutputGeometry records the output transform and pushes it to the
// active chrome.
func (d *Desktop) SetOutputGeometry(name uint32, transform int32) {
	o, ok := d.outputs[name]
	if !ok {
		return
	}
	o.transform = transform
	if o.active != nil {
		o.active.background.SetBufferTransform(transform)
		o.active.panel.SetBufferTransform(transform)
		o.active.background.ScheduleRedraw()
		o.active.panel.ScheduleRedraw()
	}
}

// SetOutputScale records the output scale factor and pushes it to the
// active chrome.
func (d *Desktop) SetOutputScale(name uint32, scale int32) {
	o, ok := d.outputs[name]
	if !ok {
		return
	}
	if scale < 1 {
		scale = 1
	}
	o.scale = scale
	if o.active != nil {
		o.active.background.SetBufferScale(scale)
		o.active.panel.SetBufferScale(scale)
		o.active.background.ScheduleRedraw()
		o.active.panel.ScheduleRedraw()
	}
}

// OutputCount reports how many outputs are currently tracked.
func (d *Desktop) OutputCount() int { return len(d.outputs) }
