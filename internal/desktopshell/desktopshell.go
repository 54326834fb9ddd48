// Package desktopshell implements the private desktop_shell protocol
package desktopshell

import (
	"github.com/neurlang/wayland/wl"
)

// InterfaceName is the registry name of the shell global.
const InterfaceName = "desktop_shell"

// MaxVersion is the highest protocol version this client understands.
const MaxVersion uint32 = 2

// Basic type aliases for compatibility
type BaseProxy = wl.BaseProxy
type Event = wl.Event
type Context = wl.Context
type Proxy = wl.Proxy
type WlSurface = wl.Surface
type WlOutput = wl.Output

// BindDesktopShell binds to the desktop_shell interface
func BindDesktopShell(r *wl.Registry, name uint32, version uint32) *DesktopShell {
	// Get the context from the registry
	ctx, _ := wl.GetUserData[wl.Context](r)

	shell := NewDesktopShell(ctx)

	_ = r.Bind(name, InterfaceName, version, shell)

	return shell
}

// DesktopShellAddListener adds all listeners for desktop_shell events
func DesktopShellAddListener(s *DesktopShell, h interface{}) {
	if handler, ok := h.(ConfigureHandler); ok {
		s.AddConfigureHandler(handler)
	}
	if handler, ok := h.(PrepareLockSurfaceHandler); ok {
		s.AddPrepareLockSurfaceHandler(handler)
	}
	if handler, ok := h.(GrabCursorHandler); ok {
		s.AddGrabCursorHandler(handler)
	}
	if handler, ok := h.(UserSwitchedHandler); ok {
		s.AddUserSwitchedHandler(handler)
	}
}
