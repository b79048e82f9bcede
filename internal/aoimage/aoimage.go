// Package aoimage is the pixel engine behind the orthophoto mosaic:
// RGBA image buffers with explicit lifecycle, a JPEG codec adapter,
// row-wise paste/crop compositing and box-filter mip generation.
//
// The engine spawns no goroutines and keeps no shared state. Every
// buffer is private to its caller; operations on disjoint buffers are
// safe to run concurrently. When the host hands in a Hold on its
// execution token, the pixel-bulk loops release it for their duration
// so CPU-bound work can overlap with the host's other threads.
package aoimage

import (
	"fmt"
	"io"
)

const maxInt = int(^uint(0) >> 1)

// RGB is a fill color. Construct always produces opaque pixels, so
// there is no alpha component here.
type RGB struct {
	R, G, B uint8
}

// Engine creates images and carries the optional execution-token hold
// they inherit. A zero or nil-hold engine works standalone.
type Engine struct {
	hold *Hold
}

// NewEngine returns an engine operating under the caller's hold on the
// host execution token. A nil hold means there is no host lock to
// release around pixel loops.
func NewEngine(hold *Hold) *Engine {
	return &Engine{hold: hold}
}

// Detached returns a hold-free view of the engine for worker
// goroutines that do not own the token. Images it creates never touch
// the host lock.
func (e *Engine) Detached() *Engine { return &Engine{} }

// Image is an RGBA pixel buffer. The backing storage is exactly
// width*height*channels bytes with rows stride bytes apart; there is
// exactly one live owner, and Destroy ends its life explicitly.
type Image struct {
	pix      []byte
	width    int
	height   int
	channels int
	stride   int
	hold     *Hold
}

// New constructs a width x height canvas filled with an opaque color.
// Height must be a multiple of 4 and at least 4. The fill writes one
// row and doubles it with block copies, so large canvases cost O(log
// height) copies. A black fill packs to color bits all zero; alpha
// does not matter for that case downstream, so the zeroed allocation
// is kept as-is and the canvas comes out fully transparent black.
func (e *Engine) New(width, height int, fill RGB) (*Image, error) {
	if height < 4 || height%4 != 0 {
		return nil, errf(KindInvalid, "height error: %d", height)
	}
	if width < 0 {
		return nil, errf(KindInvalid, "width error: %d", width)
	}

	m, err := e.newImage(width, height)
	if err != nil {
		return nil, err
	}

	if fill == (RGB{}) || len(m.pix) == 0 {
		return m, nil
	}

	row := m.pix[:m.stride]
	for x := 0; x < width; x++ {
		i := x * 4
		row[i+0] = fill.R
		row[i+1] = fill.G
		row[i+2] = fill.B
		row[i+3] = 0xff
	}

	for off := m.stride; off < len(m.pix); off *= 2 {
		copy(m.pix[off:], m.pix[:off])
	}

	return m, nil
}

// newImage allocates a 4-channel image without touching the pixels.
func (e *Engine) newImage(width, height int) (*Image, error) {
	size := int64(width) * int64(height) * 4
	if size > int64(maxInt) {
		return nil, errf(KindAlloc, "can't allocate %d bytes", size)
	}
	return &Image{
		pix:      make([]byte, int(size)),
		width:    width,
		height:   height,
		channels: 4,
		stride:   width * 4,
		hold:     e.hold,
	}, nil
}

// Destroy releases the pixel storage and zeroes the image. Calling it
// on an already destroyed image is a no-op.
func (m *Image) Destroy() {
	m.pix = nil
	m.width = 0
	m.height = 0
	m.channels = 0
	m.stride = 0
	m.hold = nil
}

// ToRGBA returns a fresh 4-channel copy of the image. A 4-channel
// source is copied byte for byte; a 3-channel source is expanded with
// alpha forced opaque.
func (m *Image) ToRGBA() (*Image, error) {
	if m.channels != 3 && m.channels != 4 {
		return nil, errf(KindInvalid, "channel error %d != 4", m.channels)
	}

	size := int64(m.width) * int64(m.height) * 4
	if size > int64(maxInt) {
		return nil, errf(KindAlloc, "can't allocate %d bytes", size)
	}
	dst := &Image{
		pix:      make([]byte, int(size)),
		width:    m.width,
		height:   m.height,
		channels: 4,
		stride:   m.width * 4,
		hold:     m.hold,
	}

	if m.channels == 4 {
		copy(dst.pix, m.pix)
		return dst, nil
	}

	src := m.pix
	out := dst.pix
	allowThreads(m.hold, func() {
		si, di := 0, 0
		for si < len(src) {
			out[di+0] = src[si+0]
			out[di+1] = src[si+1]
			out[di+2] = src[si+2]
			out[di+3] = 0xff
			si += 3
			di += 4
		}
	})

	return dst, nil
}

// Bytes returns a fresh flat copy of the pixel storage.
func (m *Image) Bytes() []byte {
	out := make([]byte, len(m.pix))
	copy(out, m.pix)
	return out
}

// CopyTo copies the pixel storage into caller-owned dst, which must
// hold at least Len bytes.
func (m *Image) CopyTo(dst []byte) error {
	if len(dst) < len(m.pix) {
		return errf(KindInvalid, "destination %d bytes, need %d", len(dst), len(m.pix))
	}
	copy(dst, m.pix)
	return nil
}

// Pix returns the live pixel storage. The slice aliases the image;
// callers that need an independent copy use Bytes.
func (m *Image) Pix() []byte { return m.pix }

func (m *Image) Width() int    { return m.width }
func (m *Image) Height() int   { return m.height }
func (m *Image) Channels() int { return m.channels }

// Stride is the byte distance between the starts of adjacent rows.
func (m *Image) Stride() int { return m.stride }

// Len is the pixel storage size in bytes.
func (m *Image) Len() int { return len(m.pix) }

// Dump writes the buffer geometry to w for debugging.
func (m *Image) Dump(w io.Writer, title string) {
	fmt.Fprintf(w, "%s:\n\twidth:\t%d\n\theight:\t%d\n\tstride:\t%d\n\tchans:\t%d\n\tbytes:\t%d\n",
		title, m.width, m.height, m.stride, m.channels, len(m.pix))
}
