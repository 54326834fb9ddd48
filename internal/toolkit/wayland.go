package toolkit

import (
	"fmt"
	"image"
	"syscall"

	"github.com/neurlang/wayland/wl"
	"github.com/neurlang/wayland/wlclient"
	"golang.org/x/sys/unix"

	"github.com/tavren/waydesk/internal/logger"
)

// WaylandBackend implements Backend on a live compositor connection.
type WaylandBackend struct {
	display    *wl.Display
	registry   *wl.Registry
	compositor *wl.Compositor
	shm        *wl.Shm
	seat       *wl.Seat
	keyboard   *wl.Keyboard
	pointer    *wl.Pointer

	// interfaces remembers which interface each global name carried, so
	// removals can be reported with their interface.
	interfaces map[uint32]string

	// onGlobal/onGlobalRemove forward registry globals to the shell layer.
	// They are invoked on the dispatch goroutine; the installer is
	// responsible for posting onto the event loop.
	onGlobal       func(name uint32, iface string, version uint32)
	onGlobalRemove func(name uint32, iface string)

	// pending buffers globals announced before SetGlobalHandlers, which
	// happens for everything in the initial roundtrip.
	pending []pendingGlobal

	loop *Display

	cursor Cursor

	done chan struct{}
}

type pendingGlobal struct {
	name    uint32
	iface   string
	version uint32
}

type waylandSurface struct {
	surface *wl.Surface
}

func (s *waylandSurface) ID() uint32 { return uint32(s.surface.Id()) }

// WlSurface unwraps the raw protocol object for shell protocol requests.
func WlSurface(s Surface) *wl.Surface {
	if ws, ok := s.(*waylandSurface); ok {
		return ws.surface
	}
	return nil
}

// ConnectWayland connects to the compositor named by WAYLAND_DISPLAY and
// performs the initial registry roundtrip. Failure here is fatal for the
// process; there is no session to join without a display.
func ConnectWayland() (*WaylandBackend, error) {
	conn, err := wlclient.DisplayConnect(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Wayland display: %w", err)
	}

	registry, err := conn.GetRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry: %w", err)
	}

	b := &WaylandBackend{
		display:    conn,
		registry:   registry,
		interfaces: make(map[uint32]string),
		done:       make(chan struct{}),
	}
	registry.AddGlobalHandler(b)
	registry.AddGlobalRemoveHandler(b)

	if err := wlclient.DisplayRoundtrip(conn); err != nil {
		return nil, fmt.Errorf("failed to process registry events: %w", err)
	}
	if b.compositor == nil || b.shm == nil {
		return nil, fmt.Errorf("missing required Wayland interfaces")
	}
	return b, nil
}

// Registry exposes the raw registry for binding shell-level globals.
func (b *WaylandBackend) Registry() *wl.Registry { return b.registry }

// SetGlobalHandlers installs the callbacks receiving registry globals that
// the backend does not consume itself, and replays the globals collected
// during the initial roundtrip.
func (b *WaylandBackend) SetGlobalHandlers(
	added func(name uint32, iface string, version uint32),
	removed func(name uint32, iface string),
) {
	b.onGlobal = added
	b.onGlobalRemove = removed
	replay := b.pending
	b.pending = nil
	for _, g := range replay {
		added(g.name, g.iface, g.version)
	}
}

// HandleRegistryGlobal binds the toolkit-owned globals and forwards the
// rest to the shell layer.
func (b *WaylandBackend) HandleRegistryGlobal(ev wl.RegistryGlobalEvent) {
	b.interfaces[ev.Name] = ev.Interface

	switch ev.Interface {
	case "wl_compositor":
		b.compositor = wlclient.RegistryBindCompositorInterface(b.registry, ev.Name, 4)
		logger.Debug("Bound wl_compositor")
	case "wl_shm":
		b.shm = wlclient.RegistryBindShmInterface(b.registry, ev.Name, 1)
		logger.Debug("Bound wl_shm")
	case "wl_seat":
		b.seat = wlclient.RegistryBindSeatInterface(b.registry, ev.Name, 7)
		b.seat.AddCapabilitiesHandler(b)
		logger.Debug("Bound wl_seat")
	default:
		if b.onGlobal != nil {
			b.onGlobal(ev.Name, ev.Interface, ev.Version)
		} else {
			b.pending = append(b.pending, pendingGlobal{ev.Name, ev.Interface, ev.Version})
		}
	}
}

// HandleRegistryGlobalRemove forwards global removals with the interface
// recorded at add time.
func (b *WaylandBackend) HandleRegistryGlobalRemove(ev wl.RegistryGlobalRemoveEvent) {
	iface := b.interfaces[ev.Name]
	delete(b.interfaces, ev.Name)
	if b.onGlobalRemove != nil {
		b.onGlobalRemove(ev.Name, iface)
	}
}

// BindOutput binds a wl_output global announced by the registry.
func (b *WaylandBackend) BindOutput(name uint32, version uint32) *wl.Output {
	if version > 3 {
		version = 3
	}
	return wlclient.RegistryBindOutputInterface(b.registry, name, version)
}

// AttachInput routes seat input into the display's event loop.
func (b *WaylandBackend) AttachInput(loop *Display) {
	b.loop = loop
}

// HandleSeatCapabilities picks up the keyboard and pointer when offered.
func (b *WaylandBackend) HandleSeatCapabilities(ev wl.SeatCapabilitiesEvent) {
	if ev.Capabilities&wl.SeatCapabilityKeyboard != 0 && b.keyboard == nil {
		keyboard, err := b.seat.GetKeyboard()
		if err != nil {
			logger.Errorf("failed to get keyboard: %v", err)
		} else {
			b.keyboard = keyboard
			keyboard.AddKeyHandler(b)
			keyboard.AddEnterHandler(b)
			keyboard.AddLeaveHandler(b)
			keyboard.AddModifiersHandler(b)
		}
	}
	if ev.Capabilities&wl.SeatCapabilityPointer != 0 && b.pointer == nil {
		pointer, err := b.seat.GetPointer()
		if err != nil {
			logger.Errorf("failed to get pointer: %v", err)
		} else {
			b.pointer = pointer
			pointer.AddEnterHandler(b)
			pointer.AddLeaveHandler(b)
			pointer.AddMotionHandler(b)
			pointer.AddButtonHandler(b)
		}
	}
}

func (b *WaylandBackend) post(f func()) {
	if b.loop != nil {
		b.loop.Post(f)
	}
}

// HandleKeyboardEnter begins key delivery to a surface.
func (b *WaylandBackend) HandleKeyboardEnter(ev wl.KeyboardEnterEvent) {
	id := uint32(ev.Surface.Id())
	b.post(func() { b.loop.KeyboardEnter(id) })
}

// HandleKeyboardLeave ends key delivery.
func (b *WaylandBackend) HandleKeyboardLeave(ev wl.KeyboardLeaveEvent) {
	b.post(func() { b.loop.KeyboardLeave() })
}

// HandleKeyboardModifiers tracks the shift state for keycode translation.
func (b *WaylandBackend) HandleKeyboardModifiers(ev wl.KeyboardModifiersEvent) {
	shift := ev.ModsDepressed&1 != 0
	b.post(func() { b.loop.SetShiftHeld(shift) })
}

// HandleKeyboardKey translates and forwards one key event.
func (b *WaylandBackend) HandleKeyboardKey(ev wl.KeyboardKeyEvent) {
	code := ev.Key
	pressed := ev.State == 1
	b.post(func() {
		b.loop.Key(KeyEvent{
			Code:    code,
			Rune:    KeycodeRune(code, b.loop.ShiftHeld()),
			Pressed: pressed,
		})
	})
}

// HandlePointerEnter begins pointer delivery to a surface.
func (b *WaylandBackend) HandlePointerEnter(ev wl.PointerEnterEvent) {
	id := uint32(ev.Surface.Id())
	x, y := int(ev.SurfaceX), int(ev.SurfaceY)
	b.post(func() { b.loop.PointerEnter(id, x, y) })
}

// HandlePointerLeave ends pointer delivery.
func (b *WaylandBackend) HandlePointerLeave(ev wl.PointerLeaveEvent) {
	b.post(func() { b.loop.PointerLeave() })
}

// HandlePointerMotion updates the pointer focus.
func (b *WaylandBackend) HandlePointerMotion(ev wl.PointerMotionEvent) {
	x, y := int(ev.SurfaceX), int(ev.SurfaceY)
	b.post(func() { b.loop.PointerMotion(x, y) })
}

// HandlePointerButton forwards a button event.
func (b *WaylandBackend) HandlePointerButton(ev wl.PointerButtonEvent) {
	button := ev.Button
	state := ButtonState(ev.State)
	b.post(func() { b.loop.PointerButton(button, state) })
}

// CreateSurface allocates a compositor surface.
func (b *WaylandBackend) CreateSurface() (Surface, error) {
	s, err := b.compositor.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("failed to create surface: %w", err)
	}
	return &waylandSurface{surface: s}, nil
}

// CreateBuffer allocates a plain RGBA frame; the SHM copy happens at
// Present time.
func (b *WaylandBackend) CreateBuffer(width, height int) (*Buffer, error) {
	return &Buffer{Image: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

// Present copies the frame into a shared-memory pool and commits it.
func (b *WaylandBackend) Present(s Surface, buf *Buffer) error {
	ws, ok := s.(*waylandSurface)
	if !ok {
		return fmt.Errorf("not a wayland surface")
	}
	bounds := buf.Image.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	stride := width * 4
	size := stride * height

	fd, err := unix.MemfdCreate("waydesk-buffer", unix.MFD_CLOEXEC)
	if err != nil {
		return fmt.Errorf("failed to create memfd: %w", err)
	}
	defer unix.Close(fd)

	if err := syscall.Ftruncate(fd, int64(size)); err != nil {
		return fmt.Errorf("failed to truncate memfd: %w", err)
	}

	data, err := syscall.Mmap(fd, 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("failed to mmap: %w", err)
	}
	defer syscall.Munmap(data)

	// RGBA to little-endian ARGB (B, G, R, A byte order).
	pix := buf.Image.Pix
	for i := 0; i+3 < len(pix) && i+3 < len(data); i += 4 {
		data[i+0] = pix[i+2]
		data[i+1] = pix[i+1]
		data[i+2] = pix[i+0]
		data[i+3] = pix[i+3]
	}

	pool, err := b.shm.CreatePool(uintptr(fd), int32(size))
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	buffer, err := pool.CreateBuffer(0, int32(width), int32(height), int32(stride), wl.ShmFormatArgb8888)
	if err != nil {
		pool.Destroy()
		return fmt.Errorf("failed to create buffer: %w", err)
	}
	pool.Destroy()

	ws.surface.Attach(buffer, 0, 0)
	ws.surface.Damage(0, 0, int32(width), int32(height))
	ws.surface.Commit()
	return nil
}

// DestroySurface releases a surface.
func (b *WaylandBackend) DestroySurface(s Surface) {
	if ws, ok := s.(*waylandSurface); ok {
		ws.surface.Destroy()
	}
}

// SetCursor records the pointer shape the widget layer asked for.
// TODO: load a wl_cursor theme and attach the matching image on the
// pointer's enter serial.
func (b *WaylandBackend) SetCursor(c Cursor) {
	if c == b.cursor {
		return
	}
	b.cursor = c
	logger.Debugf("Cursor changed to %d", c)
}

// Flush is a no-op: the client library writes requests synchronously.
func (b *WaylandBackend) Flush() error { return nil }

// Dispatch pumps compositor events until Stop is called. Run it on its own
// goroutine; handlers post their work onto the display loop.
func (b *WaylandBackend) Dispatch() {
	for {
		select {
		case <-b.done:
			return
		default:
			if err := wlclient.DisplayDispatch(b.display); err != nil {
				logger.Errorf("failed to dispatch Wayland events: %v", err)
				return
			}
		}
	}
}

// Roundtrip blocks until the compositor has processed all prior requests.
func (b *WaylandBackend) Roundtrip() error {
	return wlclient.DisplayRoundtrip(b.display)
}

// Stop ends the dispatch loop.
func (b *WaylandBackend) Stop() {
	close(b.done)
}
