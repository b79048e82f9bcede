package mosaic

import (
	"fmt"
	"image"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"

	"github.com/ProgrammingDinosaur/autoortho4xplane/internal/aoimage"
)

// WritePreview downsamples the canvas to at most width pixels across
// with Catmull-Rom resampling and writes it as PNG. This is a viewing
// convenience; the mip chain itself stays on the exact box filter.
func WritePreview(w io.Writer, img *aoimage.Image, width int) error {
	if width <= 0 || img.Width() == 0 || img.Height() == 0 {
		return fmt.Errorf("mosaic: bad preview geometry %dx%d -> width %d", img.Width(), img.Height(), width)
	}

	src := &image.RGBA{
		Pix:    img.Pix(),
		Stride: img.Stride(),
		Rect:   image.Rect(0, 0, img.Width(), img.Height()),
	}

	if width > img.Width() {
		width = img.Width()
	}
	height := img.Height() * width / img.Width()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return png.Encode(w, dst)
}
