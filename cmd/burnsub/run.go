package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/leonardotrapani/burnsub/internal/config"
	"github.com/leonardotrapani/burnsub/internal/deps"
	"github.com/leonardotrapani/burnsub/internal/pipeline"
	"github.com/leonardotrapani/burnsub/internal/provider"
	"github.com/spf13/cobra"
)

type runOptions struct {
	output string
	chunk  float64
	words  int
	dryRun bool
}

func runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Subtitle a video file",
		Long: `Extract the audio of a video, recognize it chunk by chunk with automatic
language detection, translate each chunk to English and burn the result
into a copy of the video as timed captions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVideo(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output video (default from config: "+config.DefaultOutput+")")
	cmd.Flags().Float64Var(&opts.chunk, "chunk", 0, "chunk length in seconds (default from config)")
	cmd.Flags().IntVar(&opts.words, "words", 0, "words per caption (default from config)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the caption cues without rendering")

	return cmd
}

func runVideo(cmd *cobra.Command, video string, opts runOptions) error {
	if _, err := os.Stat(video); err != nil {
		return fmt.Errorf("input video: %w", err)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w (run burnsub configure)", err)
	}

	if err := deps.RequireAll(deps.CheckAll(cfg.Transcription.Provider == provider.ProviderWhisperCpp)); err != nil {
		return err
	}

	driver, err := pipeline.NewFromConfig(cfg, pipeline.Options{DryRun: opts.dryRun})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := driver.Run(ctx, video)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("interrupted")
		}
		return err
	}

	out := cmd.OutOrStdout()
	writeReport(out, report, shouldColorize(out))
	return nil
}

// applyRunOverrides copies non-zero flags over the loaded config
func applyRunOverrides(cfg *config.Config, opts runOptions) {
	if opts.output != "" {
		cfg.General.Output = opts.output
	}
	if opts.chunk > 0 {
		cfg.Transcription.ChunkSeconds = opts.chunk
	}
	if opts.words > 0 {
		cfg.Captions.WordsPerCue = opts.words
	}
}

func writeReport(w io.Writer, r pipeline.Report, colorize bool) {
	if r.Outcome == pipeline.Planned && len(r.Cues) > 0 {
		fmt.Fprintln(w, renderCueTable(r))
		fmt.Fprintln(w)
	}

	for _, line := range renderSectionHeader("Summary", colorize) {
		fmt.Fprintln(w, line)
	}

	chunks := fmt.Sprintf("%d/%d processed, %d skipped", r.Processed, r.Windows, r.Skipped)
	fmt.Fprintln(w, renderStatusLine("Chunks", statusInfo, chunks, colorize))

	if r.StoppedEarly {
		fmt.Fprintln(w, renderStatusLine("Recognition", statusWarn, fmt.Sprintf("stopped early: %v", r.StopErr), colorize))
	} else {
		fmt.Fprintln(w, renderStatusLine("Recognition", statusOK, fmt.Sprintf("%d fragment(s)", r.Fragments), colorize))
	}

	switch r.Outcome {
	case pipeline.Rendered:
		fmt.Fprintln(w, renderStatusLine("Output", statusOK, r.Output, colorize))
	case pipeline.Planned:
		fmt.Fprintln(w, renderStatusLine("Output", statusInfo, "dry run, nothing rendered", colorize))
	case pipeline.NoSubtitles:
		fmt.Fprintln(w, renderStatusLine("Output", statusWarn, r.Reason+", no video written", colorize))
	}

	fmt.Fprintln(w, renderStatusLine("Elapsed", statusInfo, r.Elapsed.Round(time.Millisecond).String(), colorize))
}

func renderCueTable(r pipeline.Report) string {
	rows := make([][]string, 0, len(r.Cues))
	for i, c := range r.Cues {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			formatSeconds(c.Start),
			formatSeconds(c.End()),
			c.Text,
		})
	}
	return renderTable([]string{"#", "Start", "End", "Text"}, rows, []columnAlignment{alignRight, alignRight, alignRight, alignLeft})
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 2, 64)
}
