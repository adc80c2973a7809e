package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/leonardotrapani/burnsub/internal/captions"
	"github.com/leonardotrapani/burnsub/internal/media"
)

// Options controls caption styling and output encoding.
type Options struct {
	FFmpegPath   string
	TempDir      string
	VideoCodec   string
	AudioCodec   string
	Threads      int
	Font         string
	FallbackFont string
	FontSize     int
	FontColor    string
	BoxHeight    int
	WidthRatio   float64
}

// DefaultOptions matches the original caption look: white 32pt text in a
// 120px band spanning 90% of the frame, encoded with libx264/aac.
func DefaultOptions() Options {
	return Options{
		FFmpegPath:   "ffmpeg",
		VideoCodec:   "libx264",
		AudioCodec:   "aac",
		Threads:      4,
		FallbackFont: "DejaVu Sans",
		FontSize:     32,
		FontColor:    "white",
		BoxHeight:    120,
		WidthRatio:   0.9,
	}
}

// FontChecker reports whether a font family is installed.
type FontChecker func(family string) bool

// Renderer burns caption cues into a video with ffmpeg's drawtext filter.
type Renderer struct {
	opts      Options
	fontAvail FontChecker
}

func NewRenderer(opts Options) *Renderer {
	defaults := DefaultOptions()
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = defaults.FFmpegPath
	}
	if opts.VideoCodec == "" {
		opts.VideoCodec = defaults.VideoCodec
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = defaults.AudioCodec
	}
	if opts.FontSize <= 0 {
		opts.FontSize = defaults.FontSize
	}
	if opts.FontColor == "" {
		opts.FontColor = defaults.FontColor
	}
	if opts.BoxHeight <= 0 {
		opts.BoxHeight = defaults.BoxHeight
	}
	if opts.WidthRatio <= 0 || opts.WidthRatio > 1 {
		opts.WidthRatio = defaults.WidthRatio
	}
	return &Renderer{opts: opts, fontAvail: fontInstalled}
}

// Render writes video with cues composited on top to output.
func (r *Renderer) Render(ctx context.Context, video media.VideoInfo, cues []captions.Cue, output string) error {
	if len(cues) == 0 {
		return errors.New("render: no cues")
	}
	if output == "" {
		return errors.New("render: empty output path")
	}

	tmpDir := r.opts.TempDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	workDir, err := os.MkdirTemp(tmpDir, "burnsub-render-")
	if err != nil {
		return fmt.Errorf("render: create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Printf("Render: cleanup of %s failed: %v", workDir, err)
		}
	}()

	script, err := r.writeFilterScript(workDir, video, cues)
	if err != nil {
		return err
	}

	partial, err := partialOutput(output)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(partial); err != nil && !os.IsNotExist(err) {
			log.Printf("Render: cleanup of %s failed: %v", partial, err)
		}
	}()

	cmd := exec.CommandContext(ctx, r.opts.FFmpegPath, r.buildArgs(video.Path, script, partial)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Printf("Render: burning %d cue(s) into %s", len(cues), output)
	start := time.Now()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg render: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if err := os.Rename(partial, output); err != nil {
		return fmt.Errorf("render: move output into place: %w", err)
	}
	log.Printf("Render: wrote %s in %v", output, time.Since(start))
	return nil
}

// partialOutput reserves a hidden file beside output for ffmpeg to write.
// It keeps output's extension so ffmpeg picks the same container.
func partialOutput(output string) (string, error) {
	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("render: create output dir: %w", err)
	}
	ext := filepath.Ext(output)
	name := strings.TrimSuffix(filepath.Base(output), ext)
	f, err := os.CreateTemp(dir, "."+name+".partial-*"+ext)
	if err != nil {
		return "", fmt.Errorf("render: reserve output: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("render: reserve output: %w", err)
	}
	return f.Name(), nil
}

func (r *Renderer) buildArgs(input, script, output string) []string {
	args := []string{
		"-y",
		"-v", "error",
		"-i", input,
		"-filter_script:v", script,
		"-map", "0:v:0",
		"-map", "0:a?",
		"-c:v", r.opts.VideoCodec,
		"-c:a", r.opts.AudioCodec,
	}
	if r.opts.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(r.opts.Threads))
	}
	return append(args, output)
}

// writeFilterScript writes each cue's wrapped text to its own file and a
// drawtext chain referencing those files. Caption text never enters the
// filter graph itself.
func (r *Renderer) writeFilterScript(workDir string, video media.VideoInfo, cues []captions.Cue) (string, error) {
	font := r.resolveFont()
	width := captions.LineWidth(float64(video.Width)*r.opts.WidthRatio, r.opts.FontSize)
	maxLines := max(r.opts.BoxHeight*10/(r.opts.FontSize*12), 1)

	filters := make([]string, 0, len(cues))
	for i, cue := range cues {
		textPath := filepath.Join(workDir, fmt.Sprintf("cue-%04d.txt", i))
		text := strings.Join(captions.FitLines(cue.Text, width, maxLines), "\n")
		if err := os.WriteFile(textPath, []byte(text), 0600); err != nil {
			return "", fmt.Errorf("render: write cue text: %w", err)
		}
		filters = append(filters, r.drawtext(font, textPath, cue))
	}

	scriptPath := filepath.Join(workDir, "captions.filter")
	if err := os.WriteFile(scriptPath, []byte(strings.Join(filters, ",\n")+"\n"), 0600); err != nil {
		return "", fmt.Errorf("render: write filter script: %w", err)
	}
	return scriptPath, nil
}

func (r *Renderer) drawtext(font, textPath string, cue captions.Cue) string {
	box := r.opts.BoxHeight
	opts := []string{}
	if font != "" {
		opts = append(opts, "font="+quote(font))
	}
	opts = append(opts,
		"textfile="+quote(textPath),
		"expansion=none",
		"fontsize="+strconv.Itoa(r.opts.FontSize),
		"fontcolor="+quote(r.opts.FontColor),
		"x=(w-text_w)/2",
		fmt.Sprintf("y=h-%d+(%d-text_h)/2", box, box),
		fmt.Sprintf("enable='gte(t,%.3f)*lt(t,%.3f)'", cue.Start, cue.End()),
	)
	return "drawtext=" + strings.Join(opts, ":")
}

// resolveFont picks the configured font when installed, then the fallback.
// An empty result leaves the choice to ffmpeg.
func (r *Renderer) resolveFont() string {
	if r.opts.Font != "" {
		if r.fontAvail(r.opts.Font) {
			return r.opts.Font
		}
		log.Printf("Render: font %q not available, using %q", r.opts.Font, r.opts.FallbackFont)
	}
	return r.opts.FallbackFont
}

// quote wraps s in single quotes for the filtergraph parser.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func fontInstalled(family string) bool {
	out, err := exec.Command("fc-list", family).Output()
	return err == nil && len(bytes.TrimSpace(out)) > 0
}
