// Package shell implements the desktop shell client state machine: output
// chrome lifecycle, compositor readiness, and the lock, unlock and user
// switch flow. It talks to the compositor through the Proto interface so the
// protocol transport stays swappable in tests.
package shell

import (
	"github.com/tavren/waydesk/internal/config"
	"github.com/tavren/waydesk/internal/logger"
	"github.com/tavren/waydesk/internal/toolkit"
)

// PanelHeight is the fixed panel strip height in pixels. Compositor
// configures for panel surfaces are clamped to it.
const PanelHeight = 32

// MaxProtocolVersion is the highest desktop_shell version this client
// speaks. Server offers above it are clamped down.
const MaxProtocolVersion = 2

// Proto is the outbound half of the desktop_shell protocol.
type Proto interface {
	SetBackground(output OutputHandle, s toolkit.Surface)
	SetPanel(output OutputHandle, s toolkit.Surface)
	SetLockSurface(s toolkit.Surface)
	SetGrabSurface(s toolkit.Surface)
	DesktopReady()
	Lock()
	Unlock()
	SwitchUser(username string)
}

// OutputHandle is an opaque reference to a bound compositor output, passed
// back on per-output protocol requests.
type OutputHandle interface {
	ID() uint32
}

// ChromeBuilder constructs the per-output chrome windows for a user.
type ChromeBuilder interface {
	BuildBackground(username string) (*toolkit.Window, error)
	BuildPanel(username string) (*toolkit.Window, error)
}

// Options wires the desktop to its environment. BindShell and BindOutput
// perform the actual registry binds; Verify checks a password (nil accepts
// anything); Users lists the accounts offered on the unlock dialog.
type Options struct {
	BindShell  func(name uint32, version uint32) Proto
	BindOutput func(name uint32, version uint32) OutputHandle
	Verify     func(username, password string) error
	Users      func() []string
	Logout     func()
}

type windowRole int

const (
	roleNone windowRole = iota
	roleBackground
	rolePanel
	roleLockDialog
	roleGrab
)

// Desktop is the root shell state. All methods must be called from the
// display's event loop.
type Desktop struct {
	display *toolkit.Display
	cfg     *config.Config
	builder ChromeBuilder
	opts    Options

	proto   Proto
	version uint32

	outputs map[uint32]*Output

	currentUser string
	unlock      *unlockDialog
	grabWindow  *toolkit.Window
	grabCursor  toolkit.Cursor

	readySent bool
}

// New creates the desktop state machine. The protocol is not bound yet;
// globals arrive through GlobalAdded.
func New(display *toolkit.Display, cfg *config.Config, builder ChromeBuilder, opts Options) *Desktop {
	user := cfg.Shell.DefaultUser
	if user == "" {
		user = "Guest"
	}
	return &Desktop{
		display:     display,
		cfg:         cfg,
		builder:     builder,
		opts:        opts,
		outputs:     make(map[uint32]*Output),
		currentUser: user,
		grabCursor:  toolkit.CursorLeftPtr,
	}
}

// CurrentUser returns the user whose chrome is active.
func (d *Desktop) CurrentUser() string { return d.currentUser }

// Version returns the negotiated protocol version, zero before the shell
// global is bound.
func (d *Desktop) Version() uint32 { return d.version }

// Bound reports whether the shell global has been bound.
func (d *Desktop) Bound() bool { return d.proto != nil }

// GlobalAdded handles one registry global announcement. Outputs announced
// before the shell global are held and their chrome is built once the shell
// binds.
func (d *Desktop) GlobalAdded(name uint32, iface string, version uint32) {
	switch iface {
	case "desktop_shell":
		if d.proto != nil {
			logger.Warn("Ignoring duplicate desktop_shell global")
			return
		}
		v := version
		if v > MaxProtocolVersion {
			v = MaxProtocolVersion
		}
		d.proto = d.opts.BindShell(name, v)
		d.version = v
		logger.Infof("Bound desktop_shell version %d", v)
		d.createGrabSurface()
		for _, o := range d.outputs {
			if o.active == nil {
				d.initOutput(o)
			}
		}
	case "wl_output":
		if _, ok := d.outputs[name]; ok {
			return
		}
		handle := d.opts.BindOutput(name, version)
		o := &Output{
			name:   name,
			handle: handle,
			scale:  1,
			pairs:  make(map[string]*SurfacePair),
		}
		d.outputs[name] = o
		logger.Debugf("Output %d announced", name)
		if d.proto != nil {
			d.initOutput(o)
		}
	}
}

// GlobalRemoved handles a registry global removal. Only outputs matter;
// everything the removed output owned is torn down.
func (d *Desktop) GlobalRemoved(name uint32, iface string) {
	o, ok := d.outputs[name]
	if !ok {
		return
	}
	o.destroy()
	delete(d.outputs, name)
	logger.Debugf("Output %d removed", name)
	d.checkReadiness()
}

// Configure applies a compositor-driven size to the surface's window.
// Panel surfaces keep their fixed strip height regardless of the offered
// size.
func (d *Desktop) Configure(edges uint32, surfaceID uint32, width, height int) {
	w := d.display.WindowBySurface(surfaceID)
	if w == nil {
		logger.Warnf("Configure for unknown surface %d", surfaceID)
		return
	}
	if role, ok := w.UserData().(windowRole); ok && role == rolePanel {
		height = PanelHeight
	}
	w.ScheduleResize(width, height)
}

// GrabCursor records the cursor the compositor wants shown during a grab.
func (d *Desktop) GrabCursor(cursor uint32) {
	d.grabCursor = translateGrabCursor(cursor)
}

func translateGrabCursor(cursor uint32) toolkit.Cursor {
	switch cursor {
	case 0: // none
		return toolkit.CursorBlank
	case 1: // busy
		return toolkit.CursorWatch
	case 2: // move
		return toolkit.CursorDragging
	case 3:
		return toolkit.CursorTop
	case 4:
		return toolkit.CursorBottom
	case 5:
		return toolkit.CursorLeftPtr
	case 6:
		return toolkit.CursorLeft
	case 7:
		return toolkit.CursorRight
	case 8:
		return toolkit.CursorTopLeft
	case 9:
		return toolkit.CursorTopRight
	case 10:
		return toolkit.CursorBottomLeft
	case 11:
		return toolkit.CursorBottomRight
	default:
		return toolkit.CursorLeftPtr
	}
}

// RequestLock asks the compositor to lock the session. The compositor
// answers with prepare_lock_surface. The lock request exists since
// protocol version 2.
func (d *Desktop) RequestLock() {
	if d.proto == nil || d.version < 2 {
		return
	}
	d.proto.Lock()
}

// Logout ends the session through the configured hook.
func (d *Desktop) Logout() {
	if d.opts.Logout != nil {
		d.opts.Logout()
	}
}

// createGrabSurface hands the compositor a surface to hold pointer focus
// during shell grabs. It never gets a buffer; its only job is to exist and
// answer cursor queries.
func (d *Desktop) createGrabSurface() {
	w, err := d.display.NewWindow("grab")
	if err != nil {
		logger.Errorf("failed to create grab surface: %v", err)
		return
	}
	w.SetUserData(roleGrab)
	root := w.AddWidget(nil)
	// The compositor reports grab pointer focus at 0,0; one pixel is
	// enough for the hit test to reach the enter handler.
	root.SetAllocation(0, 0, 1, 1)
	root.SetEnterHandler(func(_ *toolkit.Widget, x, y int) toolkit.Cursor {
		return d.grabCursor
	})
	d.grabWindow = w
	d.proto.SetGrabSurface(w.Surface())
}

// checkReadiness tells the compositor to fade in once every output's active
// chrome has drawn its first frame. It fires at most once per process and
// only on protocol version 2 and up.
func (d *Desktop) checkReadiness() {
	if d.readySent || d.proto == nil {
		return
	}
	for _, o := range d.outputs {
		if o.active == nil {
			continue
		}
		if !o.active.painted() {
			return
		}
	}
	d.readySent = true
	if d.version >= 2 {
		logger.Info("Desktop ready")
		d.proto.DesktopReady()
	}
}
