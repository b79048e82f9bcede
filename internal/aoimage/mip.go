package aoimage

import "math/bits"

// Reduce returns the half-resolution mip level of m. Each destination
// R/G/B is the integer average of its 2x2 source block, floor-divided
// by 4; alpha is forced fully opaque regardless of source alpha.
// Requires a 4-channel square image whose side is a multiple of 4.
func (m *Image) Reduce() (*Image, error) {
	if m.channels != 4 {
		return nil, errf(KindInvalid, "channel error %d != 4", m.channels)
	}
	if m.width < 4 || m.width != m.height || m.width%4 != 0 {
		return nil, errf(KindInvalid, "width error: %d", m.width)
	}

	dst := &Image{
		pix:      make([]byte, len(m.pix)/4),
		width:    m.width / 2,
		height:   m.height / 2,
		channels: 4,
		stride:   m.width / 2 * 4,
		hold:     m.hold,
	}

	src := m.pix
	out := dst.pix
	stride := m.stride
	allowThreads(m.hold, func() {
		di := 0
		for sr := 0; sr < len(src); sr += 2 * stride {
			for si := sr; si < sr+stride; si += 8 {
				r := (int(src[si+0]) + int(src[si+4]) + int(src[si+stride+0]) + int(src[si+stride+4])) / 4
				g := (int(src[si+1]) + int(src[si+5]) + int(src[si+stride+1]) + int(src[si+stride+5])) / 4
				b := (int(src[si+2]) + int(src[si+6]) + int(src[si+stride+2]) + int(src[si+stride+6])) / 4
				out[di+0] = uint8(r)
				out[di+1] = uint8(g)
				out[di+2] = uint8(b)
				out[di+3] = 0xff
				di += 4
			}
		}
	})

	return dst, nil
}

// Scale returns m upscaled by an integer factor with nearest-neighbor
// replication: each source pixel fills a factor x factor block bit for
// bit. The destination byte count is checked for overflow before
// anything is allocated.
func (m *Image) Scale(factor int) (*Image, error) {
	if m.channels != 4 {
		return nil, errf(KindInvalid, "channel error %d != 4", m.channels)
	}
	if m.width < 4 || m.width != m.height || m.width%4 != 0 {
		return nil, errf(KindInvalid, "width error: %d", m.width)
	}
	if factor <= 0 {
		return nil, errf(KindInvalid, "invalid scale factor")
	}

	hiSide, side := bits.Mul64(uint64(m.width), uint64(factor))
	hiPix, numPixels := bits.Mul64(side, side)
	if hiSide != 0 || hiPix != 0 || numPixels > uint64(maxInt)/4 {
		return nil, errf(KindInvalid, "scale overflow")
	}
	numBytes := numPixels * 4

	dst := &Image{
		pix:      make([]byte, int(numBytes)),
		width:    int(side),
		height:   int(side),
		channels: 4,
		stride:   int(side) * 4,
		hold:     m.hold,
	}

	src := m.pix
	out := dst.pix
	allowThreads(m.hold, func() {
		for sy := 0; sy < m.height; sy++ {
			rowStart := sy * factor * dst.stride
			row := out[rowStart : rowStart+dst.stride]
			si := sy * m.stride
			di := 0
			for sx := 0; sx < m.width; sx++ {
				px := src[si : si+4]
				for f := 0; f < factor; f++ {
					copy(row[di:di+4], px)
					di += 4
				}
				si += 4
			}
			// Replicate the finished row down the block.
			for f := 1; f < factor; f++ {
				copy(out[rowStart+f*dst.stride:rowStart+(f+1)*dst.stride], row)
			}
		}
	})

	return dst, nil
}

// Chain derives up to levels successive half-resolution mips of m,
// nearest first. The chain stops early once the geometry floor is
// reached (side no longer a reducible multiple of 4), so the result
// may be shorter than requested. The caller owns every returned level.
func (m *Image) Chain(levels int) ([]*Image, error) {
	if levels < 1 {
		return nil, errf(KindInvalid, "invalid level count %d", levels)
	}

	var chain []*Image
	cur := m
	for i := 0; i < levels; i++ {
		if cur.width < 4 || cur.width != cur.height || cur.width%4 != 0 {
			break
		}
		next, err := cur.Reduce()
		if err != nil {
			for _, lvl := range chain {
				lvl.Destroy()
			}
			return nil, err
		}
		chain = append(chain, next)
		cur = next
	}
	return chain, nil
}
