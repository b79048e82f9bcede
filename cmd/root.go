package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ProgrammingDinosaur/autoortho4xplane/internal/aoimage"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aoimage",
	Short: "Compose, downsample and inspect cached ortho imagery",
	Long: `aoimage works on the JPEG chunk cache of an ortho scenery setup.

Chunks are 256x256 aerial photos cached as {col}_{row}_{zoom}_{maptype}.jpg.
aoimage assembles rectangles of them into composite canvases, builds the
mipmap chains a renderer consumes, and dumps decoded headers for debugging.

Examples:
  # Compose a 16x16 chunk canvas anchored at column 2168, row 3104
  aoimage compose --col 2168 --row 3104 --width 16 --height 16 --zoom 13 -o mosaic.jpg

  # Compose the canvas whose top-left chunk covers a coordinate
  aoimage compose --lat 47.43 --lon 19.26 --zoom 13 --width 8 --height 8 -o mosaic.jpg

  # Fill gaps from chunks cached up to two zoom levels above
  aoimage compose --col 2168 --row 3104 --width 16 --height 16 --zoom 13 --max-depth 2 -o mosaic.jpg

  # Build mip levels 1..4 of an existing JPEG
  aoimage mipmap texture.jpg --levels 4

  # Show the decoded header of a JPEG
  aoimage info 2168_3104_13_BI.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.aoimage.yaml)")
	rootCmd.PersistentFlags().StringP("cache-dir", "c", ".", "chunk cache directory")
	rootCmd.PersistentFlags().StringP("maptype", "m", "BI", "imagery source the chunks were fetched from")
	rootCmd.PersistentFlags().IntP("quality", "q", aoimage.DefaultQuality, "JPEG quality for written images")

	// Bind global flags to viper
	viper.BindPFlag("cache-dir", rootCmd.PersistentFlags().Lookup("cache-dir"))
	viper.BindPFlag("maptype", rootCmd.PersistentFlags().Lookup("maptype"))
	viper.BindPFlag("quality", rootCmd.PersistentFlags().Lookup("quality"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".aoimage" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".aoimage")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
