package cmd

import (
	"fmt"

	"github.com/neurlang/wayland/wl"
	"github.com/spf13/cobra"

	"github.com/tavren/waydesk/internal/accounts"
	"github.com/tavren/waydesk/internal/auth"
	"github.com/tavren/waydesk/internal/config"
	"github.com/tavren/waydesk/internal/desktopshell"
	"github.com/tavren/waydesk/internal/logger"
	"github.com/tavren/waydesk/internal/panel"
	"github.com/tavren/waydesk/internal/sessionctl"
	"github.com/tavren/waydesk/internal/shell"
	"github.com/tavren/waydesk/internal/toolkit"
)

// runCmd is the explicit form of the default action; the bare binary runs
// the shell too, which is what compositor session files invoke.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the desktop shell client",
	RunE:  runShell,
}

// runShell connects to the compositor and runs the desktop until the
// connection drops or the process is killed.
func runShell(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	backend, err := toolkit.ConnectWayland()
	if err != nil {
		return fmt.Errorf("cannot reach the compositor: %w", err)
	}
	loop := toolkit.New(backend)
	backend.AttachInput(loop)

	builder := panel.NewBuilder(loop, cfg)

	var verify func(username, password string) error
	if cfg.Shell.PamService != "" {
		verify = auth.New(cfg.Shell.PamService).Verify
	}

	desktop := shell.New(loop, cfg, builder, shell.Options{
		BindShell:  bindShell(backend, loop),
		BindOutput: bindOutput(backend, loop),
		Verify:     verify,
		Users:      selectableUsernames,
		Logout:     logout,
	})
	builder.OnLock = func() {
		if desktop.Version() >= 2 {
			desktop.RequestLock()
			return
		}
		// Version 1 compositors have no lock request; go through logind.
		if err := sessionctl.Lock(); err != nil {
			logger.Errorf("failed to lock session: %v", err)
		}
	}
	builder.OnLogout = desktop.Logout
	loop.SetUserData(desktop)

	backend.SetGlobalHandlers(
		func(name uint32, iface string, version uint32) {
			loop.Post(func() { desktop.GlobalAdded(name, iface, version) })
		},
		func(name uint32, iface string) {
			loop.Post(func() { desktop.GlobalRemoved(name, iface) })
		},
	)

	go backend.Dispatch()
	defer backend.Stop()

	logger.Info("Waydesk running")
	return loop.Run()
}

// bindShell builds the Proto adapter over the generated protocol binding
// when the desktop_shell global appears.
func bindShell(backend *toolkit.WaylandBackend, loop *toolkit.Display) func(name, version uint32) shell.Proto {
	return func(name, version uint32) shell.Proto {
		ds := desktopshell.BindDesktopShell(backend.Registry(), name, version)

		desktopshell.DesktopShellAddListener(ds, &shellListener{loop: loop})
		return &protoAdapter{ds: ds}
	}
}

// bindOutput binds a wl_output and feeds its geometry and scale back into
// the desktop state.
func bindOutput(backend *toolkit.WaylandBackend, loop *toolkit.Display) func(name, version uint32) shell.OutputHandle {
	return func(name, version uint32) shell.OutputHandle {
		out := backend.BindOutput(name, version)
		h := &outputHandle{output: out, name: name, loop: loop}
		out.AddGeometryHandler(h)
		out.AddScaleHandler(h)
		return h
	}
}

func selectableUsernames() []string {
	users, err := accounts.List()
	if err != nil {
		logger.Errorf("failed to read accounts: %v", err)
		return nil
	}
	var names []string
	for _, u := range users {
		if u.Selectable() {
			names = append(names, u.Name)
		}
	}
	return names
}

// logout terminates the logind session; the compositor tears us down with
// it, so there is nothing more to clean up here.
func logout() {
	logger.Info("Logging out")
	if err := sessionctl.Logout(); err != nil {
		logger.Errorf("failed to terminate session: %v", err)
	}
}

// protoAdapter sends shell requests over the wire. Send failures mean the
// connection is going away; they are logged and the loop's shutdown is
// left to the dispatch goroutine.
type protoAdapter struct {
	ds *desktopshell.DesktopShell
}

func (p *protoAdapter) logErr(what string, err error) {
	if err != nil {
		logger.Errorf("failed to send %s: %v", what, err)
	}
}

func (p *protoAdapter) SetBackground(o shell.OutputHandle, s toolkit.Surface) {
	p.logErr("set_background", p.ds.SetBackground(o.(*outputHandle).output, toolkit.WlSurface(s)))
}

func (p *protoAdapter) SetPanel(o shell.OutputHandle, s toolkit.Surface) {
	p.logErr("set_panel", p.ds.SetPanel(o.(*outputHandle).output, toolkit.WlSurface(s)))
}

func (p *protoAdapter) SetLockSurface(s toolkit.Surface) {
	p.logErr("set_lock_surface", p.ds.SetLockSurface(toolkit.WlSurface(s)))
}

func (p *protoAdapter) SetGrabSurface(s toolkit.Surface) {
	p.logErr("set_grab_surface", p.ds.SetGrabSurface(toolkit.WlSurface(s)))
}

func (p *protoAdapter) DesktopReady() { p.logErr("desktop_ready", p.ds.DesktopReady()) }
func (p *protoAdapter) Lock()         { p.logErr("lock", p.ds.Lock()) }
func (p *protoAdapter) Unlock()       { p.logErr("unlock", p.ds.Unlock()) }

func (p *protoAdapter) SwitchUser(username string) {
	p.logErr("switch_user", p.ds.SwitchUser(username))
}

// shellListener receives protocol events on the dispatch goroutine and
// posts them onto the event loop.
type shellListener struct {
	loop *toolkit.Display
}

func (l *shellListener) desktop() *shell.Desktop {
	return l.loop.UserData().(*shell.Desktop)
}

func (l *shellListener) HandleDesktopShellConfigure(ev desktopshell.ConfigureEvent) {
	edges := ev.Edges
	var surfaceID uint32
	if ev.Surface != nil {
		surfaceID = uint32(ev.Surface.Id())
	}
	width, height := int(ev.Width), int(ev.Height)
	l.loop.Post(func() {
		l.desktop().Configure(edges, surfaceID, width, height)
	})
}

func (l *shellListener) HandleDesktopShellPrepareLockSurface(desktopshell.PrepareLockSurfaceEvent) {
	l.loop.Post(func() { l.desktop().PrepareLock() })
}

func (l *shellListener) HandleDesktopShellGrabCursor(ev desktopshell.GrabCursorEvent) {
	cursor := ev.Cursor
	l.loop.Post(func() { l.desktop().GrabCursor(cursor) })
}

func (l *shellListener) HandleDesktopShellUserSwitched(ev desktopshell.UserSwitchedEvent) {
	username := ev.Username
	l.loop.Post(func() { l.desktop().UserSwitched(username) })
}

// outputHandle wraps a bound wl_output for per-output protocol requests.
type outputHandle struct {
	output *wl.Output
	name   uint32
	loop   *toolkit.Display
}

func (h *outputHandle) ID() uint32 { return h.name }

func (h *outputHandle) HandleOutputGeometry(ev wl.OutputGeometryEvent) {
	transform := ev.Transform
	h.loop.Post(func() {
		h.loop.UserData().(*shell.Desktop).SetOutputGeometry(h.name, transform)
	})
}

func (h *outputHandle) HandleOutputScale(ev wl.OutputScaleEvent) {
	scale := ev.Factor
	h.loop.Post(func() {
		h.loop.UserData().(*shell.Desktop).SetOutputScale(h.name, scale)
	})
}
