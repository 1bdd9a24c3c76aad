package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mpic/internal/config"
)

// version is overridden at build time with -ldflags "-X mpic/cmd.version=...".
var version = "dev"

var (
	flagDir         string
	flagOutput      string
	flagQuality     int
	flagGifColours  int
	flagBlackDirs   []string
	flagYes         bool
	flagReplace     bool
	flagConfig      string
	flagLogLevel    string
	flagLogFormat   string
	flagLogFile     string
	flagFailOnError bool
)

var rootCmd = &cobra.Command{
	Use:   "mpic",
	Short: "mpic - batch-compress the PNG, JPEG and GIF images in a directory tree",
	Long: `mpic walks a directory recursively and re-encodes every PNG, JPEG and GIF
at a lower quality, writing the results to a mirrored output tree or, with
--replace, over the originals.`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCompress,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := rootCmd.Flags()
	flags.StringVarP(&flagDir, "dir", "d", ".", "directory to compress, subdirectories included")
	flags.StringVarP(&flagOutput, "output", "o", config.DefaultOutputDir, "output directory (ignored with --replace)")
	flags.IntVarP(&flagQuality, "quality", "q", config.DefaultQuality, "PNG/JPEG quality (0-100)")
	flags.IntVarP(&flagGifColours, "gif-colours", "g", config.DefaultGifColours, "maximum GIF palette size (2-256)")
	flags.StringSliceVarP(&flagBlackDirs, "black-dirs", "b", config.DefaultBlackDirs, "directory names to skip (comma separated)")
	flags.BoolVarP(&flagYes, "yes", "y", false, "skip the confirmation prompt")
	flags.BoolVarP(&flagReplace, "replace", "r", false, "compress in place, replacing the original files")
	flags.StringVarP(&flagConfig, "config", "c", "", "TOML file with default settings")
	flags.StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&flagLogFormat, "log-format", "console", "log format (console, json)")
	flags.StringVar(&flagLogFile, "log-file", "", "also append log lines to this file")
	flags.BoolVar(&flagFailOnError, "fail-on-error", false, "exit non-zero when any image fails")
}
