// Package toolkit is a small window/widget layer for shell chrome. It owns
// window surfaces, widget allocations and event dispatch; pixel contents are
// produced by redraw handlers drawing into plain RGBA images.
package toolkit

import "image"

// Surface is an opaque compositor surface handle owned by a window.
type Surface interface {
	ID() uint32
}

// Buffer is one frame's worth of pixels for a surface.
type Buffer struct {
	Image *image.RGBA
}

// Backend abstracts the compositor connection so the widget layer can run
// against a real Wayland session or headless in tests.
type Backend interface {
	// CreateSurface allocates a compositor surface.
	CreateSurface() (Surface, error)

	// CreateBuffer allocates a frame buffer of the given size.
	CreateBuffer(width, height int) (*Buffer, error)

	// Present attaches the buffer to the surface and commits it.
	Present(s Surface, b *Buffer) error

	// DestroySurface releases a surface.
	DestroySurface(s Surface)

	// SetCursor tells the compositor which pointer image to show.
	SetCursor(c Cursor)

	// Flush pushes any pending requests to the compositor.
	Flush() error
}
