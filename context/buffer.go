package context

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// BufferKind selects the GPU usage flags for a buffer created through
// the context.
type BufferKind int

const (
	// BufferVertex holds per-vertex or per-instance attribute data.
	BufferVertex BufferKind = iota
	// BufferIndex holds 16 or 32 bit index data.
	BufferIndex
	// BufferUniform holds shader uniform blocks.
	BufferUniform
)

// String returns the kind name for logging.
func (k BufferKind) String() string {
	switch k {
	case BufferVertex:
		return "vertex"
	case BufferIndex:
		return "index"
	case BufferUniform:
		return "uniform"
	default:
		return fmt.Sprintf("BufferKind(%d)", int(k))
	}
}

func (k BufferKind) usage() gputypes.BufferUsage {
	switch k {
	case BufferIndex:
		return gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	case BufferUniform:
		return gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	default:
		return gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	}
}

// Buffer is a handle to a GPU buffer owned by a Context. A Buffer stays
// valid until DestroyBuffer; using it afterwards fails with
// ErrBufferReleased.
type Buffer struct {
	raw      hal.Buffer
	size     uint64
	kind     BufferKind
	released bool
}

// Size returns the buffer capacity in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Kind returns the usage the buffer was created with.
func (b *Buffer) Kind() BufferKind { return b.kind }

// CreateBuffer allocates a GPU buffer of the given kind and size. The
// contents are undefined until the first UploadBuffer.
func (c *Context) CreateBuffer(label string, kind BufferKind, size uint64) (*Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAlive(); err != nil {
		return nil, err
	}
	raw, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: kind.usage(),
	})
	if err != nil {
		return nil, fmt.Errorf("context: create %s buffer %q: %w", kind, label, err)
	}
	return &Buffer{raw: raw, size: size, kind: kind}, nil
}

// CreateBufferInit allocates a buffer and fills it with data in one call.
func (c *Context) CreateBufferInit(label string, kind BufferKind, data []byte) (*Buffer, error) {
	buf, err := c.CreateBuffer(label, kind, uint64(len(data)))
	if err != nil {
		return nil, err
	}
	if err := c.UploadBuffer(buf, 0, data); err != nil {
		c.DestroyBuffer(buf)
		return nil, err
	}
	return buf, nil
}

// UploadBuffer writes data into buf at the given byte offset. The target
// buffer is named explicitly; uploads never depend on binding state.
func (c *Context) UploadBuffer(buf *Buffer, offset uint64, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkAlive(); err != nil {
		return err
	}
	if buf == nil || buf.released {
		return ErrBufferReleased
	}
	if offset+uint64(len(data)) > buf.size {
		return fmt.Errorf("context: upload of %d bytes at offset %d exceeds buffer size %d",
			len(data), offset, buf.size)
	}
	c.queue.WriteBuffer(buf.raw, offset, data)
	return nil
}

// DestroyBuffer releases the GPU allocation. Destroying an already
// released buffer is a no-op.
func (c *Context) DestroyBuffer(buf *Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if buf == nil || buf.released || c.state == StateFaulted {
		return
	}
	c.device.DestroyBuffer(buf.raw)
	buf.released = true

	// Unbind stale references so later draws fail validation instead of
	// touching freed memory.
	for i := range c.bind.vertex {
		if c.bind.vertex[i] == buf {
			c.bind.vertex[i] = nil
		}
	}
	if c.bind.index == buf {
		c.bind.index = nil
	}
}

// DestroyBufferAfterFrame releases buf once the current frame's GPU
// work has completed. Outside a frame it destroys immediately. Draws
// recorded this frame may still reference the buffer.
func (c *Context) DestroyBufferAfterFrame(buf *Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if buf == nil || buf.released || c.state == StateFaulted {
		return
	}
	if c.state == StateFrameOpen || c.state == StateRenderPassOpen {
		c.garbage.buffers = append(c.garbage.buffers, buf.raw)
	} else {
		c.device.DestroyBuffer(buf.raw)
	}
	buf.released = true
	for i := range c.bind.vertex {
		if c.bind.vertex[i] == buf {
			c.bind.vertex[i] = nil
		}
	}
	if c.bind.index == buf {
		c.bind.index = nil
	}
}
