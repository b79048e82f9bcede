package chunk

import (
	"math"
	"path/filepath"
	"testing"
)

func TestNaming(t *testing.T) {
	c := Chunk{Col: 2168, Row: 3129, Zoom: 13, MapType: "BI"}

	if got := c.ID(); got != "2168_3129_13_BI" {
		t.Errorf("Expected ID 2168_3129_13_BI, got %s", got)
	}
	if got := c.Filename(); got != "2168_3129_13_BI.jpg" {
		t.Errorf("Expected filename 2168_3129_13_BI.jpg, got %s", got)
	}
	if got := c.Path("cache"); got != filepath.Join("cache", "2168_3129_13_BI.jpg") {
		t.Errorf("Expected cache path, got %s", got)
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Chunk
		ok   bool
	}{
		{"plain", "2168_3129_13_BI.jpg", Chunk{2168, 3129, 13, "BI"}, true},
		{"with directory", "cache/12_34_9_EOX.jpg", Chunk{12, 34, 9, "EOX"}, true},
		{"maptype with underscore", "1_2_3_USGS_NAIP.jpg", Chunk{1, 2, 3, "USGS_NAIP"}, true},
		{"too few fields", "12_34_9.jpg", Chunk{}, false},
		{"empty maptype", "12_34_9_.jpg", Chunk{}, false},
		{"bad column", "x_34_9_BI.jpg", Chunk{}, false},
		{"bad zoom", "12_34_z_BI.jpg", Chunk{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilename(tt.in)
			if tt.ok != (err == nil) {
				t.Fatalf("ParseFilename(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Errorf("ParseFilename(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFilename_RoundTrip(t *testing.T) {
	c := Chunk{Col: 44, Row: 91, Zoom: 16, MapType: "NAIP"}
	got, err := ParseFilename(c.Filename())
	if err != nil {
		t.Fatalf("ParseFilename failed: %v", err)
	}
	if got != c {
		t.Errorf("Expected %+v, got %+v", c, got)
	}
}

func TestAncestor(t *testing.T) {
	c := Chunk{Col: 2168, Row: 3129, Zoom: 13, MapType: "BI"}

	p := c.Ancestor(1)
	want := Chunk{Col: 1084, Row: 1564, Zoom: 12, MapType: "BI"}
	if p != want {
		t.Errorf("Expected %+v, got %+v", want, p)
	}

	gp := c.Ancestor(3)
	want = Chunk{Col: 271, Row: 391, Zoom: 10, MapType: "BI"}
	if gp != want {
		t.Errorf("Expected %+v, got %+v", want, gp)
	}
}

func TestAt(t *testing.T) {
	// The origin sits on the boundary of the four zoom-1 tiles; the
	// south-east one owns it.
	c := At(0, 0, 1, "BI")
	if c.Col != 1 || c.Row != 1 || c.Zoom != 1 {
		t.Errorf("Expected chunk (1,1) at zoom 1, got (%d,%d) at zoom %d", c.Col, c.Row, c.Zoom)
	}

	if c := At(0, 0, 0, "BI"); c.Col != 0 || c.Row != 0 {
		t.Errorf("Expected the world chunk at zoom 0, got (%d,%d)", c.Col, c.Row)
	}
}

func TestBoundAndCenter(t *testing.T) {
	world := Chunk{Col: 0, Row: 0, Zoom: 0, MapType: "BI"}

	b := world.Bound()
	if math.Abs(b.Min[0]+180) > 1e-9 || math.Abs(b.Max[0]-180) > 1e-9 {
		t.Errorf("Expected longitude span -180..180, got %v..%v", b.Min[0], b.Max[0])
	}

	ctr := world.Center()
	if math.Abs(ctr[0]) > 1e-9 || math.Abs(ctr[1]) > 1e-9 {
		t.Errorf("Expected center at the origin, got %v", ctr)
	}
}

func TestGridChunks(t *testing.T) {
	g := Grid{Col: 10, Row: 20, Width: 3, Height: 2, Zoom: 13, MapType: "BI"}

	chunks := g.Chunks()
	if len(chunks) != 6 {
		t.Fatalf("Expected 6 chunks, got %d", len(chunks))
	}
	if chunks[0] != (Chunk{10, 20, 13, "BI"}) {
		t.Errorf("Expected row-major start at (10,20), got %+v", chunks[0])
	}
	if chunks[3] != (Chunk{10, 21, 13, "BI"}) {
		t.Errorf("Expected second row to start at (10,21), got %+v", chunks[3])
	}
	if chunks[5] != (Chunk{12, 21, 13, "BI"}) {
		t.Errorf("Expected row-major end at (12,21), got %+v", chunks[5])
	}

	if got := (Grid{Width: 0, Height: 2}).Chunks(); got != nil {
		t.Errorf("Expected nil for an empty grid, got %d chunks", len(got))
	}
}
