// Package desktopshell implements the private desktop_shell protocol
package desktopshell

import (
	"sync"
)

// Cursor constants advertised by the grab_cursor event. The numbering
// follows the order the compositor's grab listener handles them.
// TODO: cross-check the ids against weston's desktop-shell.xml cursor enum.
const (
	CursorNone uint32 = iota
	CursorBusy
	CursorMove
	CursorResizeTop
	CursorResizeBottom
	CursorArrow
	CursorResizeLeft
	CursorResizeRight
	CursorResizeTopLeft
	CursorResizeTopRight
	CursorResizeBottomLeft
	CursorResizeBottomRight
)

// Protocol request constants for desktop_shell
const (
	RequestSetBackground uint32 = iota
	RequestSetPanel
	RequestSetLockSurface
	RequestUnlock
	RequestSetGrabSurface
	RequestDesktopReady // since version 2
	RequestLock         // since version 2
	RequestSwitchUser   // since version 2
)

// Protocol event constants for desktop_shell
const (
	EventConfigure uint32 = iota
	EventPrepareLockSurface
	EventGrabCursor
	EventUserSwitched
)

// DesktopShell represents a desktop_shell object
type DesktopShell struct {
	BaseProxy
	mu                       sync.RWMutex
	privateConfigureHandlers []ConfigureHandler
	privatePrepareHandlers   []PrepareLockSurfaceHandler
	privateCursorHandlers    []GrabCursorHandler
	privateSwitchedHandlers  []UserSwitchedHandler
}

// NewDesktopShell is a constructor for the DesktopShell object
func NewDesktopShell(ctx *Context) *DesktopShell {
	ret := new(DesktopShell)
	ctx.Register(ret)
	return ret
}

// SetBackground assigns a background surface to an output
func (s *DesktopShell) SetBackground(output *WlOutput, surface *WlSurface) error {
	return s.Context().SendRequest(s, RequestSetBackground, output, surface)
}

// SetPanel assigns a panel surface to an output
func (s *DesktopShell) SetPanel(output *WlOutput, surface *WlSurface) error {
	return s.Context().SendRequest(s, RequestSetPanel, output, surface)
}

// SetLockSurface assigns the surface shown while the session is locked
func (s *DesktopShell) SetLockSurface(surface *WlSurface) error {
	return s.Context().SendRequest(s, RequestSetLockSurface, surface)
}

// Unlock acknowledges that the unlock flow is complete
func (s *DesktopShell) Unlock() error {
	return s.Context().SendRequest(s, RequestUnlock)
}

// SetGrabSurface assigns the surface receiving pointer grabs
func (s *DesktopShell) SetGrabSurface(surface *WlSurface) error {
	return s.Context().SendRequest(s, RequestSetGrabSurface, surface)
}

// DesktopReady signals that all chrome has completed its first paint.
// Requires version 2.
func (s *DesktopShell) DesktopReady() error {
	return s.Context().SendRequest(s, RequestDesktopReady)
}

// Lock asks the compositor to start the lock sequence. Requires version 2.
func (s *DesktopShell) Lock() error {
	return s.Context().SendRequest(s, RequestLock)
}

// SwitchUser asks the compositor to switch the session to another user.
// Requires version 2.
func (s *DesktopShell) SwitchUser(username string) error {
	return s.Context().SendRequest(s, RequestSwitchUser, username)
}

// Dispatch dispatches events for DesktopShell
func (s *DesktopShell) Dispatch(event *Event) {
	switch event.Opcode {
	case EventConfigure:
		if len(s.privateConfigureHandlers) > 0 {
			ev := ConfigureEvent{}
			ev.Edges = event.Uint32()
			if p, ok := event.Proxy(s.Context()).(*WlSurface); ok {
				ev.Surface = p
			}
			ev.Width = int32(event.Uint32())
			ev.Height = int32(event.Uint32())
			s.mu.RLock()
			for _, h := range s.privateConfigureHandlers {
				h.HandleDesktopShellConfigure(ev)
			}
			s.mu.RUnlock()
		}
	case EventPrepareLockSurface:
		if len(s.privatePrepareHandlers) > 0 {
			ev := PrepareLockSurfaceEvent{}
			s.mu.RLock()
			for _, h := range s.privatePrepareHandlers {
				h.HandleDesktopShellPrepareLockSurface(ev)
			}
			s.mu.RUnlock()
		}
	case EventGrabCursor:
		if len(s.privateCursorHandlers) > 0 {
			ev := GrabCursorEvent{}
			ev.Cursor = event.Uint32()
			s.mu.RLock()
			for _, h := range s.privateCursorHandlers {
				h.HandleDesktopShellGrabCursor(ev)
			}
			s.mu.RUnlock()
		}
	case EventUserSwitched:
		if len(s.privateSwitchedHandlers) > 0 {
			ev := UserSwitchedEvent{}
			ev.Username = event.String()
			s.mu.RLock()
			for _, h := range s.privateSwitchedHandlers {
				h.HandleDesktopShellUserSwitched(ev)
			}
			s.mu.RUnlock()
		}
	}
}

// ConfigureEvent carries a size for a panel or background surface
type ConfigureEvent struct {
	Edges   uint32
	Surface *WlSurface
	Width   int32
	Height  int32
}

// PrepareLockSurfaceEvent asks the client to provide a lock surface
type PrepareLockSurfaceEvent struct {
}

// GrabCursorEvent tells the client which cursor to show during a grab
type GrabCursorEvent struct {
	Cursor uint32
}

// UserSwitchedEvent reports that the session switched to another user
type UserSwitchedEvent struct {
	Username string
}

// ConfigureHandler is the handler interface for ConfigureEvent
type ConfigureHandler interface {
	HandleDesktopShellConfigure(ConfigureEvent)
}

// PrepareLockSurfaceHandler is the handler interface for PrepareLockSurfaceEvent
type PrepareLockSurfaceHandler interface {
	HandleDesktopShellPrepareLockSurface(PrepareLockSurfaceEvent)
}

// GrabCursorHandler is the handler interface for GrabCursorEvent
type GrabCursorHandler interface {
	HandleDesktopShellGrabCursor(GrabCursorEvent)
}

// UserSwitchedHandler is the handler interface for UserSwitchedEvent
type UserSwitchedHandler interface {
	HandleDesktopShellUserSwitched(UserSwitchedEvent)
}

// AddConfigureHandler adds the Configure handler
func (s *DesktopShell) AddConfigureHandler(h ConfigureHandler) {
	if h != nil {
		s.mu.Lock()
		s.privateConfigureHandlers = append(s.privateConfigureHandlers, h)
		s.mu.Unlock()
	}
}

// AddPrepareLockSurfaceHandler adds the PrepareLockSurface handler
func (s *DesktopShell) AddPrepareLockSurfaceHandler(h PrepareLockSurfaceHandler) {
	if h != nil {
		s.mu.Lock()
		s.privatePrepareHandlers = append(s.privatePrepareHandlers, h)
		s.mu.Unlock()
	}
}

// AddGrabCursorHandler adds the GrabCursor handler
func (s *DesktopShell) AddGrabCursorHandler(h GrabCursorHandler) {
	if h != nil {
		s.mu.Lock()
		s.privateCursorHandlers = append(s.privateCursorHandlers, h)
		s.mu.Unlock()
	}
}

// AddUserSwitchedHandler adds the UserSwitched handler
func (s *DesktopShell) AddUserSwitchedHandler(h UserSwitchedHandler) {
	if h != nil {
		s.mu.Lock()
		s.privateSwitchedHandlers = append(s.privateSwitchedHandlers, h)
		s.mu.Unlock()
	}
}
