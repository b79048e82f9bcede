// Package mosaic assembles grids of cached chunk images into the
// composite canvases the mip generator works from. Chunks decode in
// parallel; pasting is serialized so the canvas fills in a
// deterministic row-major order.
package mosaic

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ProgrammingDinosaur/autoortho4xplane/internal/aoimage"
	"github.com/ProgrammingDinosaur/autoortho4xplane/pkg/chunk"
)

// Canvas fill colors inherited from the ortho pipeline.
var (
	// Background shows through wherever no chunk could be placed.
	Background = aoimage.RGB{R: 66, G: 77, B: 55}
	// Placeholder fills a canvas that has no chunk grid at all.
	Placeholder = aoimage.RGB{R: 128, G: 128, B: 128}
	// cropSeed marks upfill crop destinations before they are filled.
	cropSeed = aoimage.RGB{R: 0, G: 255, B: 0}
)

// maxUpfillDepth bounds the ancestor search so the replication factor
// caps at 16 and a cropped square always scales back to exactly one
// chunk.
const maxUpfillDepth = 4

// Options configures one assembly run.
type Options struct {
	Grid     chunk.Grid
	CacheDir string
	// MaxDepth is how many zoom levels up to search for a cached
	// ancestor when a chunk is missing. Zero disables upfill; values
	// above maxUpfillDepth are clamped.
	MaxDepth int
	// Workers caps parallel chunk decodes. Zero means min(16, chunks).
	Workers int
	// Progress, when set, receives per-chunk diagnostics.
	Progress io.Writer
}

// MissingChunk records one grid position nothing could be placed for.
type MissingChunk struct {
	Chunk chunk.Chunk
	Err   error
}

// Error reports an assembly where not a single chunk could be placed.
type Error struct {
	Message string
	Missing []MissingChunk
	Total   int
}

func (e *Error) Error() string { return e.Message }

// Result carries the finished canvas and its placement accounting.
// The caller owns the canvas.
type Result struct {
	Canvas   *aoimage.Image
	Placed   int
	Upfilled int
	Missing  []MissingChunk
}

// Assembler builds mosaic canvases from a chunk cache on disk.
type Assembler struct {
	engine *aoimage.Engine
}

// New returns an assembler creating its canvases through engine.
func New(engine *aoimage.Engine) *Assembler {
	return &Assembler{engine: engine}
}

// Assemble decodes the grid's chunks from the cache directory and
// pastes them into one canvas. Missing chunks are upfilled from
// cached ancestors when possible and otherwise left as background.
// An empty grid yields a single placeholder chunk.
func (a *Assembler) Assemble(ctx context.Context, opts Options) (*Result, error) {
	chunks := opts.Grid.Chunks()
	if len(chunks) == 0 {
		canvas, err := a.engine.New(chunk.Size, chunk.Size, Placeholder)
		if err != nil {
			return nil, err
		}
		return &Result{Canvas: canvas}, nil
	}

	canvas, err := a.engine.New(opts.Grid.Width*chunk.Size, opts.Grid.Height*chunk.Size, Background)
	if err != nil {
		return nil, err
	}

	type loaded struct {
		img      *aoimage.Image
		upfilled bool
		err      error
	}
	results := make([]loaded, len(chunks))

	workers := opts.Workers
	if workers <= 0 {
		workers = len(chunks)
		if workers > 16 {
			workers = 16
		}
	}

	depth := opts.MaxDepth
	if depth > maxUpfillDepth {
		depth = maxUpfillDepth
	}

	// Decode workers run off the assembling goroutine, so they must not
	// release the caller's hold on the host execution token.
	worker := a.engine.Detached()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range chunks {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			img, err := load(worker, c, opts.CacheDir)
			if err == nil {
				results[i] = loaded{img: img}
				return nil
			}

			if depth > 0 {
				if up := upfill(worker, c, opts.CacheDir, depth); up != nil {
					results[i] = loaded{img: up, upfilled: true}
					return nil
				}
			}

			results[i] = loaded{err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for i := range results {
			if results[i].img != nil {
				results[i].img.Destroy()
			}
		}
		canvas.Destroy()
		return nil, err
	}

	res := &Result{Canvas: canvas}
	for i, c := range chunks {
		r := results[i]
		if r.img == nil {
			progressf(opts.Progress, "missing %s: %v\n", c, r.err)
			res.Missing = append(res.Missing, MissingChunk{Chunk: c, Err: r.err})
			continue
		}

		x := (c.Col - opts.Grid.Col) * chunk.Size
		y := (c.Row - opts.Grid.Row) * chunk.Size
		perr := canvas.Paste(r.img, x, y)
		r.img.Destroy()
		if perr != nil {
			for j := i + 1; j < len(results); j++ {
				if results[j].img != nil {
					results[j].img.Destroy()
				}
			}
			canvas.Destroy()
			return nil, fmt.Errorf("paste chunk %s: %w", c, perr)
		}

		res.Placed++
		if r.upfilled {
			res.Upfilled++
			progressf(opts.Progress, "upfilled %s\n", c)
		}
	}

	if res.Placed == 0 {
		canvas.Destroy()
		return nil, &Error{
			Message: fmt.Sprintf("no chunks could be placed (0/%d)", len(chunks)),
			Missing: res.Missing,
			Total:   len(chunks),
		}
	}

	return res, nil
}

// load decodes one cached chunk and checks it is chunk-sized.
func load(e *aoimage.Engine, c chunk.Chunk, dir string) (*aoimage.Image, error) {
	data, err := os.ReadFile(c.Path(dir))
	if err != nil {
		return nil, err
	}
	img, err := e.Decode(data)
	if err != nil {
		return nil, err
	}
	if img.Width() != chunk.Size || img.Height() != chunk.Size {
		w, h := img.Width(), img.Height()
		img.Destroy()
		return nil, fmt.Errorf("wrong chunk size: got %dx%d, expected %dx%d", w, h, chunk.Size, chunk.Size)
	}
	return img, nil
}

// upfill searches cached ancestors of c, crops the square covering c
// out of the nearest one and scales it back to chunk size. Returns
// nil when no usable ancestor exists.
func upfill(e *aoimage.Engine, c chunk.Chunk, dir string, depth int) *aoimage.Image {
	for d := 1; d <= depth; d++ {
		anc := c.Ancestor(d)
		if anc.Zoom < 0 {
			break
		}

		data, err := os.ReadFile(anc.Path(dir))
		if err != nil {
			continue
		}
		img, err := e.Decode(data)
		if err != nil {
			continue
		}

		factor := 1 << d
		side := chunk.Size >> d
		sub, err := e.New(side, side, cropSeed)
		if err != nil {
			img.Destroy()
			continue
		}

		offX := (c.Col % factor) * side
		offY := (c.Row % factor) * side
		cerr := img.Crop(sub, offX, offY)
		img.Destroy()
		if cerr != nil {
			sub.Destroy()
			continue
		}

		scaled, serr := sub.Scale(factor)
		sub.Destroy()
		if serr != nil {
			continue
		}
		return scaled
	}
	return nil
}

func progressf(w io.Writer, format string, args ...any) {
	if w != nil {
		fmt.Fprintf(w, format, args...)
	}
}
