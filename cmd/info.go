package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ProgrammingDinosaur/autoortho4xplane/internal/aoimage"
	"github.com/ProgrammingDinosaur/autoortho4xplane/pkg/chunk"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Show the decoded header of a JPEG or probe a coordinate",
	Long: `Decode a JPEG and print its pixel geometry.

When the file name follows the {col}_{row}_{zoom}_{maptype}.jpg chunk
cache convention, the chunk's geographic placement is printed as well.
Without a file, --lat/--lon/--zoom probe which chunk covers a
coordinate and whether it is present in the cache directory.

Examples:
  aoimage info mosaic.jpg
  aoimage info 2168_3104_13_BI.jpg
  aoimage info --lat 47.43 --lon 19.26 --zoom 13 --cache-dir ./cache`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	// Probe mode
	infoCmd.Flags().Float64("lat", 0, "latitude to probe")
	infoCmd.Flags().Float64("lon", 0, "longitude to probe")
	infoCmd.Flags().IntP("zoom", "z", 0, "zoom level to probe at")

	// Bind flags to viper
	viper.BindPFlag("info.lat", infoCmd.Flags().Lookup("lat"))
	viper.BindPFlag("info.lon", infoCmd.Flags().Lookup("lon"))
	viper.BindPFlag("info.zoom", infoCmd.Flags().Lookup("zoom"))
}

func runInfo(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return runInfoFile(cmd, args[0])
	}

	lat := viper.GetFloat64("info.lat")
	lon := viper.GetFloat64("info.lon")
	zoom := viper.GetInt("info.zoom")
	if (lat == 0 && lon == 0) || zoom == 0 {
		return fmt.Errorf("give a file, or a probe coordinate (--lat, --lon, --zoom)")
	}

	c := chunk.At(lat, lon, zoom, viper.GetString("maptype"))
	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", c.Filename())
	printChunk(cmd, c)

	path := c.Path(viper.GetString("cache-dir"))
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\tcached:\t%s\n", path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "\tcached:\tno\n")
	}

	return nil
}

func runInfoFile(cmd *cobra.Command, path string) error {
	engine := aoimage.NewEngine(nil)
	img, err := engine.ReadFile(path)
	if err != nil {
		return err
	}
	defer img.Destroy()

	img.Dump(cmd.OutOrStdout(), filepath.Base(path))

	if c, err := chunk.ParseFilename(path); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\tchunk:\t%s\n", c)
		printChunk(cmd, c)
	}

	return nil
}

func printChunk(cmd *cobra.Command, c chunk.Chunk) {
	b := c.Bound()
	center := c.Center()
	fmt.Fprintf(cmd.OutOrStdout(), "\tcenter:\t%.6f, %.6f\n", center.Lat(), center.Lon())
	fmt.Fprintf(cmd.OutOrStdout(), "\tbound:\t%.6f, %.6f to %.6f, %.6f\n",
		b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon())
}
