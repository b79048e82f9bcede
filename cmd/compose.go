package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ProgrammingDinosaur/autoortho4xplane/internal/aoimage"
	"github.com/ProgrammingDinosaur/autoortho4xplane/internal/mosaic"
	"github.com/ProgrammingDinosaur/autoortho4xplane/pkg/chunk"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Assemble cached chunks into one composite canvas",
	Long: `Assemble a rectangle of cached chunks into a single JPEG canvas.

The grid is anchored either at an explicit chunk column and row or at the
chunk covering a latitude/longitude. Chunks missing from the cache are
filled from cached lower-zoom ancestors when --max-depth allows it and
otherwise left as background.

Examples:
  # 16x16 chunks anchored at an explicit column and row
  aoimage compose --col 2168 --row 3104 --width 16 --height 16 --zoom 13 -o mosaic.jpg

  # Anchor the grid at a coordinate instead
  aoimage compose --lat 47.43 --lon 19.26 --zoom 13 --width 8 --height 8 -o mosaic.jpg

  # Also write mip levels 1..4 next to the canvas
  aoimage compose --col 2168 --row 3104 --width 16 --height 16 --zoom 13 -o mosaic.jpg --mips 4

  # Write a 512px-wide PNG preview alongside
  aoimage compose --col 2168 --row 3104 --width 16 --height 16 --zoom 13 -o mosaic.jpg --preview mosaic.png`,
	RunE: runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)

	// Grid placement
	composeCmd.Flags().Int("col", 0, "left chunk column (grid mode)")
	composeCmd.Flags().Int("row", 0, "top chunk row (grid mode)")
	composeCmd.Flags().Float64("lat", 0, "latitude of the top-left chunk (coordinate mode)")
	composeCmd.Flags().Float64("lon", 0, "longitude of the top-left chunk (coordinate mode)")
	composeCmd.Flags().Int("width", 16, "grid width in chunks")
	composeCmd.Flags().Int("height", 16, "grid height in chunks")
	composeCmd.Flags().IntP("zoom", "z", 0, "chunk zoom level (required)")

	// Assembly options
	composeCmd.Flags().Int("max-depth", 0, "zoom levels to search up for missing chunks")
	composeCmd.Flags().Int("workers", 0, "parallel chunk decodes (0 = auto)")

	// Output options
	composeCmd.Flags().StringP("output", "o", "mosaic.jpg", "output JPEG file")
	composeCmd.Flags().Int("mips", 0, "also write this many reduced mip levels")
	composeCmd.Flags().String("preview", "", "write a scaled PNG preview to this file")
	composeCmd.Flags().Int("preview-width", 512, "preview width in pixels")

	// Bind flags to viper
	viper.BindPFlag("compose.col", composeCmd.Flags().Lookup("col"))
	viper.BindPFlag("compose.row", composeCmd.Flags().Lookup("row"))
	viper.BindPFlag("compose.lat", composeCmd.Flags().Lookup("lat"))
	viper.BindPFlag("compose.lon", composeCmd.Flags().Lookup("lon"))
	viper.BindPFlag("compose.width", composeCmd.Flags().Lookup("width"))
	viper.BindPFlag("compose.height", composeCmd.Flags().Lookup("height"))
	viper.BindPFlag("compose.zoom", composeCmd.Flags().Lookup("zoom"))
	viper.BindPFlag("compose.max-depth", composeCmd.Flags().Lookup("max-depth"))
	viper.BindPFlag("compose.workers", composeCmd.Flags().Lookup("workers"))
	viper.BindPFlag("compose.output", composeCmd.Flags().Lookup("output"))
	viper.BindPFlag("compose.mips", composeCmd.Flags().Lookup("mips"))
	viper.BindPFlag("compose.preview", composeCmd.Flags().Lookup("preview"))
	viper.BindPFlag("compose.preview-width", composeCmd.Flags().Lookup("preview-width"))
}

func runCompose(cmd *cobra.Command, args []string) error {
	// Validate required parameters
	zoom := viper.GetInt("compose.zoom")
	if zoom == 0 {
		return fmt.Errorf("zoom level is required (use --zoom)")
	}

	width := viper.GetInt("compose.width")
	height := viper.GetInt("compose.height")
	if width <= 0 || height <= 0 {
		return fmt.Errorf("grid size must be positive (use --width and --height)")
	}

	maptype := viper.GetString("maptype")
	grid := chunk.Grid{Width: width, Height: height, Zoom: zoom, MapType: maptype}

	// Coordinate mode anchors the grid at the chunk covering the point.
	lat := viper.GetFloat64("compose.lat")
	lon := viper.GetFloat64("compose.lon")
	if lat != 0 || lon != 0 {
		anchor := chunk.At(lat, lon, zoom, maptype)
		grid.Col = anchor.Col
		grid.Row = anchor.Row
	} else {
		grid.Col = viper.GetInt("compose.col")
		grid.Row = viper.GetInt("compose.row")
	}

	engine := aoimage.NewEngine(nil)
	res, err := mosaic.New(engine).Assemble(cmd.Context(), mosaic.Options{
		Grid:     grid,
		CacheDir: viper.GetString("cache-dir"),
		MaxDepth: viper.GetInt("compose.max-depth"),
		Workers:  viper.GetInt("compose.workers"),
		Progress: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer res.Canvas.Destroy()

	fmt.Fprintf(cmd.ErrOrStderr(), "Composed %d/%d chunks (%d upfilled, %d missing)\n",
		res.Placed, width*height, res.Upfilled, len(res.Missing))

	quality := viper.GetInt("quality")
	output := viper.GetString("compose.output")
	if err := res.Canvas.WriteFile(output, quality); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%dx%d)\n", output, res.Canvas.Width(), res.Canvas.Height())

	if mips := viper.GetInt("compose.mips"); mips > 0 {
		if err := writeMipChain(cmd, res.Canvas, output, mips, quality); err != nil {
			return err
		}
	}

	if preview := viper.GetString("compose.preview"); preview != "" {
		if err := writePreviewFile(res.Canvas, preview, viper.GetInt("compose.preview-width")); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote preview %s\n", preview)
	}

	return nil
}

func writePreviewFile(img *aoimage.Image, path string, width int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mosaic.WritePreview(f, img, width); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
