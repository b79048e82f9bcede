// Package chunk identifies the unit of fetched imagery: one 256x256
// aerial photo addressed by slippy-map column, row and zoom for a
// named map type. It owns the cache-file naming the rest of the
// system relies on and the web-mercator conversions around it.
package chunk

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Size is the pixel side of one chunk as served by imagery providers.
const Size = 256

// Chunk identifies one fetched aerial-photo tile.
type Chunk struct {
	Col     int
	Row     int
	Zoom    int
	MapType string
}

// ID is the cache identity, "{col}_{row}_{zoom}_{maptype}".
func (c Chunk) ID() string {
	return fmt.Sprintf("%d_%d_%d_%s", c.Col, c.Row, c.Zoom, c.MapType)
}

// Filename is the cache file name holding the chunk's JPEG bytes.
func (c Chunk) Filename() string {
	return c.ID() + ".jpg"
}

// Path joins a cache directory with the chunk's file name.
func (c Chunk) Path(dir string) string {
	return filepath.Join(dir, c.Filename())
}

func (c Chunk) String() string {
	return fmt.Sprintf("Chunk(%d,%d,%s,%d)", c.Col, c.Row, c.MapType, c.Zoom)
}

// Ancestor returns the chunk levels zoom steps up that covers c.
func (c Chunk) Ancestor(levels int) Chunk {
	return Chunk{
		Col:     c.Col >> levels,
		Row:     c.Row >> levels,
		Zoom:    c.Zoom - levels,
		MapType: c.MapType,
	}
}

// Tile returns the chunk's web-mercator tile.
func (c Chunk) Tile() maptile.Tile {
	return maptile.New(uint32(c.Col), uint32(c.Row), maptile.Zoom(c.Zoom))
}

// Bound returns the chunk's geographic bound.
func (c Chunk) Bound() orb.Bound {
	return c.Tile().Bound()
}

// Center returns the chunk's geographic center.
func (c Chunk) Center() orb.Point {
	return c.Tile().Center()
}

// FromTile wraps a web-mercator tile as a chunk of the given map type.
func FromTile(t maptile.Tile, maptype string) Chunk {
	return Chunk{Col: int(t.X), Row: int(t.Y), Zoom: int(t.Z), MapType: maptype}
}

// At returns the chunk covering a geographic point at a zoom level.
func At(lat, lon float64, zoom int, maptype string) Chunk {
	return FromTile(maptile.At(orb.Point{lon, lat}, maptile.Zoom(zoom)), maptype)
}

// ParseFilename recovers a chunk from a cache file name. The map type
// may itself contain underscores; everything after the third one is
// taken verbatim.
func ParseFilename(name string) (Chunk, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	parts := strings.SplitN(base, "_", 4)
	if len(parts) != 4 || parts[3] == "" {
		return Chunk{}, fmt.Errorf("chunk: bad cache name %q", name)
	}

	col, err := strconv.Atoi(parts[0])
	if err != nil {
		return Chunk{}, fmt.Errorf("chunk: bad column in %q: %w", name, err)
	}
	row, err := strconv.Atoi(parts[1])
	if err != nil {
		return Chunk{}, fmt.Errorf("chunk: bad row in %q: %w", name, err)
	}
	zoom, err := strconv.Atoi(parts[2])
	if err != nil {
		return Chunk{}, fmt.Errorf("chunk: bad zoom in %q: %w", name, err)
	}

	return Chunk{Col: col, Row: row, Zoom: zoom, MapType: parts[3]}, nil
}

// Grid is a rectangular run of chunks anchored at its top-left
// column and row.
type Grid struct {
	Col, Row      int
	Width, Height int // in chunks
	Zoom          int
	MapType       string
}

// Chunks lists the grid's chunks in row-major order.
func (g Grid) Chunks() []Chunk {
	if g.Width <= 0 || g.Height <= 0 {
		return nil
	}
	chunks := make([]Chunk, 0, g.Width*g.Height)
	for row := g.Row; row < g.Row+g.Height; row++ {
		for col := g.Col; col < g.Col+g.Width; col++ {
			chunks = append(chunks, Chunk{Col: col, Row: row, Zoom: g.Zoom, MapType: g.MapType})
		}
	}
	return chunks
}
