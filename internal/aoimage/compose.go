package aoimage

// Paste copies src's full extent into m at pixel offset (x, y), row by
// row. The fit and channel checks run before any byte is written, so a
// failed paste leaves m untouched.
func (m *Image) Paste(src *Image, x, y int) error {
	if m.channels != 4 || src.channels != 4 {
		return errf(KindInvalid, "channel error %d/%d != 4", m.channels, src.channels)
	}
	if x < 0 || y < 0 || x+src.width > m.width || y+src.height > m.height {
		return errf(KindInvalid, "paste %dx%d at (%d,%d) outside %dx%d",
			src.width, src.height, x, y, m.width, m.height)
	}

	di := y*m.stride + x*4
	si := 0
	allowThreads(m.hold, func() {
		for row := 0; row < src.height; row++ {
			copy(m.pix[di:di+src.stride], src.pix[si:si+src.stride])
			di += m.stride
			si += src.stride
		}
	})
	return nil
}

// Crop reads the dst-sized sub-rectangle of m at (x, y) into dst,
// which the caller has already constructed and owns. The inverse of
// Paste: crop after paste at the same offset recovers the pasted
// bytes exactly.
func (m *Image) Crop(dst *Image, x, y int) error {
	if m.channels != 4 || dst.channels != 4 {
		return errf(KindInvalid, "channel error %d/%d != 4", m.channels, dst.channels)
	}
	if x < 0 || y < 0 || x+dst.width > m.width || y+dst.height > m.height {
		return errf(KindInvalid, "crop %dx%d at (%d,%d) outside %dx%d",
			dst.width, dst.height, x, y, m.width, m.height)
	}

	si := y*m.stride + x*4
	di := 0
	allowThreads(m.hold, func() {
		for row := 0; row < dst.height; row++ {
			copy(dst.pix[di:di+dst.stride], m.pix[si:si+dst.stride])
			si += m.stride
			di += dst.stride
		}
	})
	return nil
}
