package aoimage

import (
	"bytes"
	"strings"
	"testing"
)

// solid constructs a flat-filled canvas and ties its teardown to the
// test.
func solid(t *testing.T, w, h int, c RGB) *Image {
	t.Helper()
	img, err := NewEngine(nil).New(w, h, c)
	if err != nil {
		t.Fatalf("New(%d, %d) failed: %v", w, h, err)
	}
	t.Cleanup(img.Destroy)
	return img
}

// rawImage builds an image with arbitrary geometry for validation
// tests that construct would refuse to produce.
func rawImage(w, h, channels int) *Image {
	return &Image{
		pix:      make([]byte, w*h*channels),
		width:    w,
		height:   h,
		channels: channels,
		stride:   w * channels,
	}
}

func TestReduce_Averages2x2Blocks(t *testing.T) {
	src := solid(t, 4, 4, RGB{})
	pix := src.Pix()
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := (y*4 + x) * 4
			pix[i+0] = uint8(x*10 + y)
			pix[i+1] = uint8(x)
			pix[i+2] = uint8(y)
			pix[i+3] = 7 // source alpha must not survive
		}
	}

	dst, err := src.Reduce()
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	defer dst.Destroy()

	if dst.Width() != 2 || dst.Height() != 2 {
		t.Fatalf("Expected 2x2, got %dx%d", dst.Width(), dst.Height())
	}

	want := []byte{
		5, 0, 0, 0xff,
		25, 2, 0, 0xff,
		7, 0, 2, 0xff,
		27, 2, 2, 0xff,
	}
	if !bytes.Equal(dst.Bytes(), want) {
		t.Errorf("Expected %v, got %v", want, dst.Bytes())
	}
}

func TestReduce_RejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name string
		img  *Image
	}{
		{"not square", rawImage(8, 4, 4)},
		{"below minimum side", rawImage(2, 2, 4)},
		{"side not multiple of 4", rawImage(6, 6, 4)},
		{"three channels", rawImage(8, 8, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := tt.img.Reduce()
			if !IsKind(err, KindInvalid) {
				t.Errorf("Expected invalid-kind error, got %v", err)
			}
			if img != nil {
				t.Errorf("Expected nil image on failure, got %dx%d", img.Width(), img.Height())
			}
		})
	}
}

func TestScale_ReplicatesPixels(t *testing.T) {
	src := solid(t, 4, 4, RGB{})
	pix := src.Pix()
	for i := range pix {
		pix[i] = uint8(i)
	}

	dst, err := src.Scale(3)
	if err != nil {
		t.Fatalf("Scale failed: %v", err)
	}
	defer dst.Destroy()

	if dst.Width() != 12 || dst.Height() != 12 {
		t.Fatalf("Expected 12x12, got %dx%d", dst.Width(), dst.Height())
	}

	out := dst.Pix()
	for sy := 0; sy < 4; sy++ {
		for sx := 0; sx < 4; sx++ {
			want := pix[(sy*4+sx)*4 : (sy*4+sx)*4+4]
			for fy := 0; fy < 3; fy++ {
				for fx := 0; fx < 3; fx++ {
					dx := sx*3 + fx
					dy := sy*3 + fy
					got := out[(dy*12+dx)*4 : (dy*12+dx)*4+4]
					if !bytes.Equal(got, want) {
						t.Fatalf("pixel (%d,%d) = %v, want %v", dx, dy, got, want)
					}
				}
			}
		}
	}
}

func TestScale_InvalidFactor(t *testing.T) {
	src := solid(t, 4, 4, RGB{R: 1})
	for _, factor := range []int{0, -2} {
		img, err := src.Scale(factor)
		if !IsKind(err, KindInvalid) {
			t.Errorf("Scale(%d): expected invalid-kind error, got %v", factor, err)
		}
		if img != nil {
			t.Errorf("Scale(%d): expected nil image, got %dx%d", factor, img.Width(), img.Height())
		}
	}
}

func TestScale_Overflow(t *testing.T) {
	src := solid(t, 4, 4, RGB{R: 1})

	// 1<<30+1 makes the squared pixel count wrap 64 bits entirely, so
	// it must be caught by the high-word check, not the size bound.
	for _, factor := range []int{1 << 30, 1<<30 + 1} {
		img, err := src.Scale(factor)
		if img != nil {
			t.Fatalf("Scale(%d): expected no allocation on overflow", factor)
		}
		if !IsKind(err, KindInvalid) {
			t.Fatalf("Scale(%d): expected invalid-kind error, got %v", factor, err)
		}
		if !strings.Contains(err.Error(), "scale overflow") {
			t.Errorf("Scale(%d): expected scale overflow message, got %q", factor, err.Error())
		}
	}
}

func TestReduceThenScaleRestoresCanvas(t *testing.T) {
	img := solid(t, 8, 8, RGB{R: 0xff})

	orig := img.Bytes()
	if len(orig) != 256 {
		t.Fatalf("Expected 256 bytes, got %d", len(orig))
	}
	for i := 0; i < len(orig); i += 4 {
		if orig[i] != 0xff || orig[i+1] != 0 || orig[i+2] != 0 || orig[i+3] != 0xff {
			t.Fatalf("pixel %d = %v, want [255 0 0 255]", i/4, orig[i:i+4])
		}
	}

	half, err := img.Reduce()
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	defer half.Destroy()

	if half.Width() != 4 || half.Height() != 4 {
		t.Fatalf("Expected 4x4, got %dx%d", half.Width(), half.Height())
	}
	hp := half.Bytes()
	for i := 0; i < len(hp); i += 4 {
		if hp[i] != 0xff || hp[i+1] != 0 || hp[i+2] != 0 || hp[i+3] != 0xff {
			t.Fatalf("reduced pixel %d = %v, want [255 0 0 255]", i/4, hp[i:i+4])
		}
	}

	back, err := half.Scale(2)
	if err != nil {
		t.Fatalf("Scale failed: %v", err)
	}
	defer back.Destroy()

	if !bytes.Equal(back.Bytes(), orig) {
		t.Error("Expected scale to restore the original bytes exactly")
	}
}

func TestChain(t *testing.T) {
	img := solid(t, 16, 16, RGB{G: 0x80})

	chain, err := img.Chain(5)
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}
	defer func() {
		for _, lvl := range chain {
			lvl.Destroy()
		}
	}()

	if len(chain) != 3 {
		t.Fatalf("Expected 3 levels before the geometry floor, got %d", len(chain))
	}
	for i, side := range []int{8, 4, 2} {
		if chain[i].Width() != side || chain[i].Height() != side {
			t.Errorf("level %d: expected %dx%d, got %dx%d", i, side, side, chain[i].Width(), chain[i].Height())
		}
	}

	// Averaging a uniform canvas keeps the color bit-exact.
	last := chain[2].Bytes()
	if last[0] != 0 || last[1] != 0x80 || last[2] != 0 || last[3] != 0xff {
		t.Errorf("Expected uniform [0 128 0 255], got %v", last[:4])
	}

	if _, err := img.Chain(0); !IsKind(err, KindInvalid) {
		t.Errorf("Expected invalid-kind error for zero levels, got %v", err)
	}
}
