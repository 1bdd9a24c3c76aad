package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mpic/internal/codec"
	"mpic/internal/config"
	"mpic/internal/display"
	"mpic/internal/logging"
	"mpic/internal/processor"
	"mpic/internal/runlock"
	"mpic/internal/tui"
)

func runCompress(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}

	opts, err := collectOptions(cmd, cwd)
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(opts, cwd)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  flagLogLevel,
		Format: flagLogFormat,
		Output: out,
		File:   flagLogFile,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.Replace && cmd.Flags().Changed("output") {
		logger.Warn("output directory ignored in replace mode", "output", flagOutput)
	}

	lock, err := runlock.Acquire(cfg.SourceRoot)
	if err != nil {
		return err
	}
	defer lock.Release()

	if !flagYes {
		fmt.Fprintf(out, "current directory: %s\n", cfg.SourceRoot)
		ok, err := tui.Confirm(cmd.InOrStdin(), out, "compress every image in this directory? Y/N:")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "cancelled")
			return nil
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := processor.Run(ctx, afero.NewOsFs(), codec.Standard{}, cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, tui.RenderSummary(summaryRows(summary)))
	if cfg.Replace {
		fmt.Fprintln(out, "all images compressed in place")
	} else {
		fmt.Fprintf(out, "all images compressed, written to %s\n", cfg.OutputRoot)
	}

	if cfg.FailOnError && summary.Failed > 0 {
		return fmt.Errorf("%d image(s) failed to compress", summary.Failed)
	}
	return nil
}

// collectOptions layers defaults, the optional config file and the flags the
// user actually set, in that order.
func collectOptions(cmd *cobra.Command, cwd string) (config.Options, error) {
	opts := config.Default()

	if flagConfig != "" {
		path := flagConfig
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		file, err := config.LoadFile(path)
		if err != nil {
			return opts, err
		}
		if err := opts.Apply(file); err != nil {
			return opts, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		opts.Dir = flagDir
	}
	if flags.Changed("output") {
		opts.Output = flagOutput
	}
	if flags.Changed("quality") {
		opts.Quality = flagQuality
	}
	if flags.Changed("gif-colours") {
		opts.GifColours = flagGifColours
	}
	if flags.Changed("black-dirs") {
		opts.BlackDirs = flagBlackDirs
	}
	if flags.Changed("replace") {
		opts.Replace = flagReplace
	}
	opts.FailOnError = flagFailOnError
	return opts, nil
}

func summaryRows(s processor.Summary) []tui.SummaryRow {
	return []tui.SummaryRow{
		{Label: "Images compressed", Value: strconv.Itoa(s.Processed)},
		{Label: "Images failed", Value: strconv.Itoa(s.Failed)},
		{Label: "Directories skipped", Value: strconv.Itoa(s.SkippedDirs)},
		{Label: "Size before", Value: display.FormatSize(s.BytesBefore)},
		{Label: "Size after", Value: display.FormatSize(s.BytesAfter)},
		{Label: "Metadata tags dropped", Value: strconv.Itoa(s.MetadataTags)},
	}
}
