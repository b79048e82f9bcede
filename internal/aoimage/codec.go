package aoimage

import (
	"bytes"
	"image"
	"io"
	"os"

	"github.com/gen2brain/jpegli"
)

// DefaultQuality is the JPEG quality used when the caller does not
// pick one.
const DefaultQuality = 90

// Decode decompresses JPEG bytes into a fresh 4-channel image. The
// leading signature is checked first: bytes that are not a JPEG fail
// before the codec is ever invoked. Header geometry is probed and the
// destination allocated from it before the full decode runs.
func (e *Engine) Decode(data []byte) (*Image, error) {
	if len(data) < 3 || data[0] != 0xff || data[1] != 0xd8 || data[2] != 0xff {
		return nil, errf(KindCodec, "data is not a JPEG")
	}

	cfg, err := jpegli.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, wrap(KindCodec, err, "decode header")
	}

	m, err := e.newImage(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}

	var decodeErr error
	allowThreads(e.hold, func() {
		img, derr := jpegli.Decode(bytes.NewReader(data))
		if derr != nil {
			decodeErr = derr
			return
		}
		fillFromImage(m, img)
	})
	if decodeErr != nil {
		m.Destroy()
		return nil, wrap(KindCodec, decodeErr, "decode")
	}

	return m, nil
}

// ReadFile decodes a JPEG file from disk.
func (e *Engine) ReadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap(KindIO, err, "read file")
	}
	if len(data) == 0 {
		return nil, errf(KindIO, "input file has no data")
	}
	return e.Decode(data)
}

// Encode compresses the image to baseline JPEG with 4:4:4 chroma
// sampling at the given quality. Requires a 4-channel image; alpha is
// dropped by the format.
func (m *Image) Encode(w io.Writer, quality int) error {
	if m.channels != 4 {
		return errf(KindInvalid, "channel error %d != 4", m.channels)
	}

	img := &image.RGBA{
		Pix:    m.pix,
		Stride: m.stride,
		Rect:   image.Rect(0, 0, m.width, m.height),
	}

	var err error
	allowThreads(m.hold, func() {
		err = jpegli.Encode(w, img, &jpegli.EncodingOptions{
			Quality:           quality,
			ChromaSubsampling: image.YCbCrSubsampleRatio444,
		})
	})
	if err != nil {
		return wrap(KindCodec, err, "encode")
	}
	return nil
}

// WriteFile encodes the image to a JPEG file on disk.
func (m *Image) WriteFile(path string, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return wrap(KindIO, err, "write file")
	}
	if err := m.Encode(f, quality); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return wrap(KindIO, err, "write file")
	}
	return nil
}

// fillFromImage copies a decoded standard-library image into m's RGBA
// storage. RGBA and NRGBA sources of matching size are copied row by
// row; everything else goes through the generic At path.
func fillFromImage(m *Image, img image.Image) {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.RGBA:
		if b.Dx() == m.width && b.Dy() == m.height {
			for y := 0; y < m.height; y++ {
				copy(m.pix[y*m.stride:(y+1)*m.stride], src.Pix[y*src.Stride:y*src.Stride+m.stride])
			}
			return
		}
	case *image.NRGBA:
		if b.Dx() == m.width && b.Dy() == m.height {
			for y := 0; y < m.height; y++ {
				copy(m.pix[y*m.stride:(y+1)*m.stride], src.Pix[y*src.Stride:y*src.Stride+m.stride])
			}
			return
		}
	}

	for y := 0; y < m.height; y++ {
		row := m.pix[y*m.stride : (y+1)*m.stride]
		for x := 0; x < m.width; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := x * 4
			row[i+0] = uint8(r >> 8)
			row[i+1] = uint8(g >> 8)
			row[i+2] = uint8(bl >> 8)
			row[i+3] = uint8(a >> 8)
		}
	}
}
