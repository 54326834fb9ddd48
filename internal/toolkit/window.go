package toolkit

import (
	"image"

	"github.com/tavren/waydesk/internal/logger"
)

// Window owns one surface and a widget tree drawn onto it.
type Window struct {
	display *Display
	surface Surface
	title   string

	root *Widget

	width, height      int
	pendingW, pendingH int
	needResize         bool
	needRedraw         bool

	bufferTransform int32
	bufferScale     int32

	keyHandler      func(KeyEvent)
	paintHandler    func()
	resizeListeners []func(width, height int)

	pointerFocus *Widget
	destroyed    bool
	userData     interface{}
}

// Surface returns the compositor surface handle for protocol calls.
func (w *Window) Surface() Surface { return w.surface }

// Title returns the window title.
func (w *Window) Title() string { return w.title }

// SetUserData attaches arbitrary state to the window.
func (w *Window) SetUserData(v interface{}) { w.userData = v }

// UserData returns the state attached with SetUserData.
func (w *Window) UserData() interface{} { return w.userData }

// Size returns the current window size.
func (w *Window) Size() (width, height int) { return w.width, w.height }

// AddWidget creates the root widget. Child widgets hang off the root.
func (w *Window) AddWidget(data interface{}) *Widget {
	w.root = &Widget{window: w, data: data}
	return w.root
}

// Root returns the root widget, nil before AddWidget.
func (w *Window) Root() *Widget { return w.root }

// SetKeyHandler installs the window's key event handler.
func (w *Window) SetKeyHandler(h func(KeyEvent)) { w.keyHandler = h }

// SetPaintHandler installs a callback invoked after every completed repaint.
func (w *Window) SetPaintHandler(h func()) { w.paintHandler = h }

// AddResizeListener registers a callback invoked when a resize is applied,
// before the repaint.
func (w *Window) AddResizeListener(f func(width, height int)) {
	w.resizeListeners = append(w.resizeListeners, f)
}

// ScheduleResize requests a resize to be applied on the next loop turn.
func (w *Window) ScheduleResize(width, height int) {
	w.pendingW, w.pendingH = width, height
	w.needResize = true
}

// ScheduleRedraw requests a repaint on the next loop turn.
func (w *Window) ScheduleRedraw() {
	w.needRedraw = true
}

// SetBufferTransform records the output transform for this window's buffers.
func (w *Window) SetBufferTransform(t int32) { w.bufferTransform = t }

// SetBufferScale records the output scale for this window's buffers.
func (w *Window) SetBufferScale(s int32) { w.bufferScale = s }

// Destroy releases the window's surface and detaches it from the display.
func (w *Window) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.display.removeWindow(w)
	w.display.backend.DestroySurface(w.surface)
}

// Destroyed reports whether Destroy has been called.
func (w *Window) Destroyed() bool { return w.destroyed }

func (w *Window) doResize() {
	w.width, w.height = w.pendingW, w.pendingH
	w.needResize = false
	if w.root != nil {
		w.root.allocation = image.Rect(0, 0, w.width, w.height)
		if w.root.resizeHandler != nil {
			w.root.resizeHandler(w.root, w.width, w.height)
		}
	}
	for _, f := range w.resizeListeners {
		f(w.width, w.height)
	}
	w.needRedraw = true
}

func (w *Window) doRedraw() {
	w.needRedraw = false
	if w.width <= 0 || w.height <= 0 {
		return
	}
	buf, err := w.display.backend.CreateBuffer(w.width, w.height)
	if err != nil {
		logger.Errorf("failed to create buffer for %q: %v", w.title, err)
		return
	}
	if w.root != nil {
		w.root.paint(buf.Image)
	}
	if err := w.display.backend.Present(w.surface, buf); err != nil {
		logger.Errorf("failed to present %q: %v", w.title, err)
		return
	}
	if w.paintHandler != nil {
		w.paintHandler()
	}
}

// widgetAt returns the deepest widget whose allocation contains the point.
func (w *Window) widgetAt(x, y int) *Widget {
	if w.root == nil {
		return nil
	}
	return w.root.at(x, y)
}

// Widget is one rectangular region of a window with its own handlers.
type Widget struct {
	window   *Window
	parent   *Widget
	children []*Widget

	allocation image.Rectangle
	data       interface{}

	resizeHandler func(w *Widget, width, height int)
	redrawHandler func(w *Widget, img *image.RGBA)
	enterHandler  func(w *Widget, x, y int) Cursor
	leaveHandler  func(w *Widget)
	buttonHandler func(w *Widget, button uint32, state ButtonState)
}

// AddWidget creates a child widget.
func (wd *Widget) AddWidget(data interface{}) *Widget {
	child := &Widget{window: wd.window, parent: wd, data: data}
	wd.children = append(wd.children, child)
	return child
}

// Window returns the owning window.
func (wd *Widget) Window() *Window { return wd.window }

// Data returns the user data passed to AddWidget.
func (wd *Widget) Data() interface{} { return wd.data }

// SetAllocation places the widget within its window.
func (wd *Widget) SetAllocation(x, y, width, height int) {
	wd.allocation = image.Rect(x, y, x+width, y+height)
}

// Allocation returns the widget's rectangle.
func (wd *Widget) Allocation() image.Rectangle { return wd.allocation }

// ScheduleRedraw repaints the owning window.
func (wd *Widget) ScheduleRedraw() { wd.window.ScheduleRedraw() }

// SetResizeHandler installs the layout callback.
func (wd *Widget) SetResizeHandler(h func(w *Widget, width, height int)) {
	wd.resizeHandler = h
}

// SetRedrawHandler installs the paint callback.
func (wd *Widget) SetRedrawHandler(h func(w *Widget, img *image.RGBA)) {
	wd.redrawHandler = h
}

// SetEnterHandler installs the pointer-enter callback; its return value is
// the cursor to show.
func (wd *Widget) SetEnterHandler(h func(w *Widget, x, y int) Cursor) {
	wd.enterHandler = h
}

// SetLeaveHandler installs the pointer-leave callback.
func (wd *Widget) SetLeaveHandler(h func(w *Widget)) {
	wd.leaveHandler = h
}

// SetButtonHandler installs the pointer-button callback.
func (wd *Widget) SetButtonHandler(h func(w *Widget, button uint32, state ButtonState)) {
	wd.buttonHandler = h
}

// Destroy detaches the widget (and its subtree) from the tree.
func (wd *Widget) Destroy() {
	if wd.parent == nil {
		if wd.window.root == wd {
			wd.window.root = nil
		}
		return
	}
	siblings := wd.parent.children
	for i, c := range siblings {
		if c == wd {
			wd.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	wd.parent = nil
}

func (wd *Widget) paint(img *image.RGBA) {
	if wd.redrawHandler != nil {
		wd.redrawHandler(wd, img)
	}
	for _, c := range wd.children {
		c.paint(img)
	}
}

func (wd *Widget) at(x, y int) *Widget {
	// Later children are on top.
	for i := len(wd.children) - 1; i >= 0; i-- {
		c := wd.children[i]
		if image.Pt(x, y).In(c.allocation) {
			return c.at(x, y)
		}
	}
	if image.Pt(x, y).In(wd.allocation) {
		return wd
	}
	return nil
}
