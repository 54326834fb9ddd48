package toolkit

import "image"

// HeadlessBackend is an in-memory backend for tests and for running the
// widget layer without a compositor. Surfaces get sequential ids and
// presented buffers are kept for inspection.
type HeadlessBackend struct {
	nextID    uint32
	Presented map[uint32]*Buffer
	Destroyed []uint32
	Flushes   int
	Cursor    Cursor
}

// NewHeadlessBackend creates an empty headless backend.
func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{
		nextID:    1,
		Presented: make(map[uint32]*Buffer),
	}
}

type headlessSurface uint32

func (s headlessSurface) ID() uint32 { return uint32(s) }

// CreateSurface allocates the next surface id.
func (b *HeadlessBackend) CreateSurface() (Surface, error) {
	s := headlessSurface(b.nextID)
	b.nextID++
	return s, nil
}

// CreateBuffer allocates a plain RGBA frame.
func (b *HeadlessBackend) CreateBuffer(width, height int) (*Buffer, error) {
	return &Buffer{Image: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

// Present records the committed buffer per surface.
func (b *HeadlessBackend) Present(s Surface, buf *Buffer) error {
	b.Presented[s.ID()] = buf
	return nil
}

// SetCursor records the last cursor the widget layer asked for.
func (b *HeadlessBackend) SetCursor(c Cursor) {
	b.Cursor = c
}

// DestroySurface records the destruction.
func (b *HeadlessBackend) DestroySurface(s Surface) {
	b.Destroyed = append(b.Destroyed, s.ID())
	delete(b.Presented, s.ID())
}

// Flush counts flushes; there is nothing to push.
func (b *HeadlessBackend) Flush() error {
	b.Flushes++
	return nil
}
