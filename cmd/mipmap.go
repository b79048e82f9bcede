package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ProgrammingDinosaur/autoortho4xplane/internal/aoimage"
)

var mipmapCmd = &cobra.Command{
	Use:   "mipmap <file>",
	Short: "Build reduced mip levels of a JPEG",
	Long: `Build successive half-resolution mip levels of a JPEG image.

Level N is written next to the input as <stem>_N.jpg. Each level averages
the 2x2 pixel blocks of the previous one, so the input must be square with
a side divisible by four; the chain stops early once that no longer holds.

Examples:
  # texture_1.jpg (2048px) .. texture_4.jpg (256px) from a 4096px texture
  aoimage mipmap texture.jpg --levels 4`,
	Args: cobra.ExactArgs(1),
	RunE: runMipmap,
}

func init() {
	rootCmd.AddCommand(mipmapCmd)

	mipmapCmd.Flags().IntP("levels", "l", 4, "number of mip levels to build")

	// Bind flags to viper
	viper.BindPFlag("mipmap.levels", mipmapCmd.Flags().Lookup("levels"))
}

func runMipmap(cmd *cobra.Command, args []string) error {
	engine := aoimage.NewEngine(nil)
	img, err := engine.ReadFile(args[0])
	if err != nil {
		return err
	}
	defer img.Destroy()

	return writeMipChain(cmd, img, args[0], viper.GetInt("mipmap.levels"), viper.GetInt("quality"))
}

// writeMipChain derives up to levels mips of img and writes each next
// to output as <stem>_<level>.jpg.
func writeMipChain(cmd *cobra.Command, img *aoimage.Image, output string, levels, quality int) error {
	chain, err := img.Chain(levels)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %dx%d image has no reducible mip levels\n", img.Width(), img.Height())
		return nil
	}

	stem := strings.TrimSuffix(output, filepath.Ext(output))
	for i, level := range chain {
		name := fmt.Sprintf("%s_%d.jpg", stem, i+1)
		werr := level.WriteFile(name, quality)
		if werr == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%dx%d)\n", name, level.Width(), level.Height())
		}
		level.Destroy()
		if werr != nil {
			for _, rest := range chain[i+1:] {
				rest.Destroy()
			}
			return werr
		}
	}
	return nil
}
