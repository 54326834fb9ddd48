package toolkit

import (
	"fmt"

	"github.com/tavren/waydesk/internal/logger"
)

// Display drives the single-threaded event loop. All windows, widgets and
// shell state are touched only from this loop; Post is the one safe entry
// point from other goroutines.
type Display struct {
	backend Backend

	windows []*Window

	// deferred holds one-shot tasks that must run on a later loop turn,
	// after the current batch of requests has been issued.
	deferred []func()

	tasks chan func()
	quit  chan struct{}

	pointerWindow  *Window
	keyboardWindow *Window
	shiftHeld      bool
	cursor         Cursor

	userData interface{}
}

// New creates a display on top of a backend.
func New(backend Backend) *Display {
	return &Display{
		backend: backend,
		tasks:   make(chan func(), 64),
		quit:    make(chan struct{}),
	}
}

// Backend exposes the underlying backend (used by the run wiring).
func (d *Display) Backend() Backend { return d.backend }

// SetUserData attaches arbitrary state to the display.
func (d *Display) SetUserData(v interface{}) { d.userData = v }

// UserData returns the state attached with SetUserData.
func (d *Display) UserData() interface{} { return d.userData }

// NewWindow creates a window backed by a fresh surface.
func (d *Display) NewWindow(title string) (*Window, error) {
	s, err := d.backend.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("failed to create surface: %w", err)
	}
	w := &Window{
		display:     d,
		surface:     s,
		title:       title,
		bufferScale: 1,
	}
	d.windows = append(d.windows, w)
	return w, nil
}

// WindowBySurface finds the window owning the surface with the given id.
func (d *Display) WindowBySurface(surfaceID uint32) *Window {
	for _, w := range d.windows {
		if w.surface.ID() == surfaceID {
			return w
		}
	}
	return nil
}

// Post queues a task from any goroutine onto the event loop.
func (d *Display) Post(f func()) {
	select {
	case d.tasks <- f:
	case <-d.quit:
	}
}

// Defer queues a one-shot task to run on the next loop turn, after the
// current batch of events and the resulting redraws. Once queued it always
// runs exactly once; there is no cancellation.
func (d *Display) Defer(f func()) {
	d.deferred = append(d.deferred, f)
}

// Run processes tasks until Quit is called.
func (d *Display) Run() error {
	for {
		select {
		case f := <-d.tasks:
			f()
		case <-d.quit:
			return nil
		}
		d.Flush()
	}
}

// Quit stops the event loop.
func (d *Display) Quit() {
	close(d.quit)
}

// Flush completes one loop turn: apply pending resizes, repaint dirty
// windows, then run the deferred tasks queued before this turn and push
// requests out. Tests call this directly to step the loop.
func (d *Display) Flush() {
	// Snapshot: handlers may create or destroy windows while we walk.
	windows := append([]*Window(nil), d.windows...)
	for _, w := range windows {
		if !w.destroyed && w.needResize {
			w.doResize()
		}
	}
	for _, w := range windows {
		if !w.destroyed && w.needRedraw {
			w.doRedraw()
		}
	}

	tasks := d.deferred
	d.deferred = nil
	for _, f := range tasks {
		f()
	}

	if err := d.backend.Flush(); err != nil {
		logger.Errorf("failed to flush backend: %v", err)
	}
}

func (d *Display) removeWindow(w *Window) {
	for i, other := range d.windows {
		if other == w {
			d.windows = append(d.windows[:i], d.windows[i+1:]...)
			break
		}
	}
	if d.pointerWindow == w {
		d.pointerWindow = nil
	}
	if d.keyboardWindow == w {
		d.keyboardWindow = nil
	}
}

// PointerEnter begins pointer delivery to the window owning surfaceID.
func (d *Display) PointerEnter(surfaceID uint32, x, y int) {
	d.pointerWindow = d.WindowBySurface(surfaceID)
	d.PointerMotion(x, y)
}

// PointerLeave ends pointer delivery for the current window.
func (d *Display) PointerLeave() {
	if w := d.pointerWindow; w != nil && w.pointerFocus != nil {
		if h := w.pointerFocus.leaveHandler; h != nil {
			h(w.pointerFocus)
		}
		w.pointerFocus = nil
	}
	d.pointerWindow = nil
	d.setCursor(CursorLeftPtr)
}

// PointerMotion updates the focused widget under the pointer and returns
// the cursor that should be shown. Cursor changes are pushed to the
// backend as they happen.
func (d *Display) PointerMotion(x, y int) Cursor {
	w := d.pointerWindow
	if w == nil {
		d.setCursor(CursorLeftPtr)
		return d.cursor
	}
	target := w.widgetAt(x, y)
	if target != w.pointerFocus {
		if old := w.pointerFocus; old != nil && old.leaveHandler != nil {
			old.leaveHandler(old)
		}
		w.pointerFocus = target
		next := CursorLeftPtr
		if target != nil && target.enterHandler != nil {
			next = target.enterHandler(target, x, y)
		}
		d.setCursor(next)
	}
	return d.cursor
}

func (d *Display) setCursor(c Cursor) {
	if c == d.cursor {
		return
	}
	d.cursor = c
	d.backend.SetCursor(c)
}

// PointerButton delivers a button event to the widget under the pointer.
func (d *Display) PointerButton(button uint32, state ButtonState) {
	w := d.pointerWindow
	if w == nil || w.pointerFocus == nil {
		return
	}
	if h := w.pointerFocus.buttonHandler; h != nil {
		h(w.pointerFocus, button, state)
	}
}

// KeyboardEnter moves key delivery to the window owning surfaceID.
func (d *Display) KeyboardEnter(surfaceID uint32) {
	d.keyboardWindow = d.WindowBySurface(surfaceID)
}

// KeyboardLeave ends key delivery.
func (d *Display) KeyboardLeave() {
	d.keyboardWindow = nil
}

// SetShiftHeld records the shift modifier state for keycode translation.
func (d *Display) SetShiftHeld(held bool) { d.shiftHeld = held }

// ShiftHeld reports the shift modifier state.
func (d *Display) ShiftHeld() bool { return d.shiftHeld }

// Key delivers a key event to the focused window.
func (d *Display) Key(ev KeyEvent) {
	w := d.keyboardWindow
	if w == nil || w.keyHandler == nil {
		return
	}
	w.keyHandler(ev)
}
