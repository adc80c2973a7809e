package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leonardotrapani/burnsub/internal/captions"
	"github.com/leonardotrapani/burnsub/internal/config"
	"github.com/leonardotrapani/burnsub/internal/media"
	"github.com/leonardotrapani/burnsub/internal/notify"
	"github.com/leonardotrapani/burnsub/internal/render"
	"github.com/leonardotrapani/burnsub/internal/transcriber"
	"github.com/leonardotrapani/burnsub/internal/translator"
)

type Status string

const (
	Idle         Status = "idle"
	Probing      Status = "probing"
	Extracting   Status = "extracting"
	Transcribing Status = "transcribing"
	Rendering    Status = "rendering"
)

// Outcome is how a job ended when it did not fail.
type Outcome string

const (
	Rendered    Outcome = "rendered"
	NoSubtitles Outcome = "no-subtitles"
	Planned     Outcome = "planned" // dry run: cues built, nothing rendered
)

type Prober interface {
	Probe(ctx context.Context, path string) (media.VideoInfo, error)
}

type Extractor interface {
	ExtractAudio(ctx context.Context, videoPath string) (transcriber.Audio, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio transcriber.Audio, chunkLength float64) (transcriber.Result, error)
}

type Renderer interface {
	Render(ctx context.Context, video media.VideoInfo, cues []captions.Cue, output string) error
}

type Sender interface {
	Send(t notify.MessageType, arg string)
}

// Options control a single job.
type Options struct {
	Output       string
	ChunkSeconds float64
	WordsPerCue  int
	DryRun       bool
}

// Report summarises a finished job.
type Report struct {
	JobID         string
	Video         string
	Output        string
	Outcome       Outcome
	Reason        string // why a NoSubtitles job wrote nothing
	VideoDuration float64
	AudioDuration float64
	Windows       int
	Processed     int
	Skipped       int
	Fragments     int
	StoppedEarly  bool
	StopErr       error
	Transcript    string
	Cues          []captions.Cue
	Elapsed       time.Duration
}

// Driver runs the subtitle pipeline for one video at a time.
type Driver struct {
	prober      Prober
	extractor   Extractor
	transcriber Transcriber
	renderer    Renderer
	sender      Sender
	opts        Options

	mu     sync.RWMutex
	status Status
}

func New(prober Prober, extractor Extractor, tr Transcriber, renderer Renderer, sender Sender, opts Options) *Driver {
	if opts.Output == "" {
		opts.Output = config.DefaultOutput
	}
	if opts.WordsPerCue <= 0 {
		opts.WordsPerCue = captions.DefaultWordsPerCue
	}
	if sender == nil {
		sender = notify.NewSender(notify.Nop{}, nil)
	}
	return &Driver{
		prober:      prober,
		extractor:   extractor,
		transcriber: tr,
		renderer:    renderer,
		sender:      sender,
		opts:        opts,
		status:      Idle,
	}
}

// NewFromConfig wires the ffmpeg tools, the configured recognizer and
// translator, and the notifier.
func NewFromConfig(cfg *config.Config, opts Options) (*Driver, error) {
	recognizer, err := transcriber.NewRecognizer(cfg.ToRecognizerConfig())
	if err != nil {
		return nil, fmt.Errorf("recognizer: %w", err)
	}
	tr, err := translator.New(cfg.ToTranslatorConfig())
	if err != nil {
		return nil, fmt.Errorf("translator: %w", err)
	}

	renderOpts := cfg.ToRenderOptions()
	if opts.Output == "" {
		opts.Output = cfg.General.Output
	}
	if opts.ChunkSeconds <= 0 {
		opts.ChunkSeconds = cfg.Transcription.ChunkSeconds
	}
	if opts.WordsPerCue <= 0 {
		opts.WordsPerCue = cfg.Captions.WordsPerCue
	}

	return New(
		FFprobe{Binary: ffprobeFor(renderOpts.FFmpegPath)},
		AudioExtractor{media.NewExtractor(renderOpts.FFmpegPath, cfg.General.TempDir)},
		transcriber.New(recognizer, tr, cfg.ToTranscriberOptions()),
		render.NewRenderer(renderOpts),
		cfg.Notifier(),
		opts,
	), nil
}

func (d *Driver) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

func (d *Driver) Options() Options {
	return d.opts
}

func (d *Driver) setStatus(s Status) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
}

// Run subtitles videoPath. A transcript with no words ends the job with
// NoSubtitles and leaves no output file.
func (d *Driver) Run(ctx context.Context, videoPath string) (Report, error) {
	report := Report{
		JobID:  uuid.NewString(),
		Video:  videoPath,
		Output: d.opts.Output,
	}
	start := time.Now()
	defer func() {
		report.Elapsed = time.Since(start)
		d.setStatus(Idle)
	}()

	log.Printf("Pipeline: job %s starting for %s", report.JobID, videoPath)

	if sameFile(videoPath, d.opts.Output) {
		return report, d.fail(report, fmt.Errorf("output %s would overwrite the input video", d.opts.Output))
	}

	d.setStatus(Probing)
	info, err := d.prober.Probe(ctx, videoPath)
	if err != nil {
		return report, d.fail(report, fmt.Errorf("probe: %w", err))
	}
	report.VideoDuration = info.Duration
	if !info.HasAudio {
		return d.noSubtitles(report, "no audio track"), nil
	}

	d.setStatus(Extracting)
	audio, err := d.extractor.ExtractAudio(ctx, videoPath)
	if err != nil {
		return report, d.fail(report, fmt.Errorf("extract audio: %w", err))
	}
	report.AudioDuration = audio.Duration()

	d.setStatus(Transcribing)
	result, err := d.transcriber.Transcribe(ctx, audio, d.opts.ChunkSeconds)
	report.Windows = result.Windows
	report.Processed = result.Processed
	report.Skipped = result.Skipped
	report.Fragments = len(result.Fragments)
	report.StoppedEarly = result.StoppedEarly
	report.StopErr = result.StopErr
	if err != nil {
		return report, d.fail(report, fmt.Errorf("transcribe: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return report, d.fail(report, err)
	}
	if result.StoppedEarly {
		log.Printf("Pipeline: transcription stopped early after %d/%d chunk(s): %v", result.Processed, result.Windows, result.StopErr)
	}

	report.Transcript = result.Transcript()
	log.Printf("Pipeline: final text length %d characters", len(report.Transcript))
	if report.Transcript == "" {
		return d.noSubtitles(report, "no text recognized"), nil
	}

	duration := info.Duration
	if duration <= 0 {
		duration = report.AudioDuration
	}
	report.Cues = captions.Segment(report.Transcript, duration, d.opts.WordsPerCue)
	if len(report.Cues) == 0 {
		return d.noSubtitles(report, "no cues to show"), nil
	}
	log.Printf("Pipeline: %d cue(s) over %.2fs", len(report.Cues), duration)

	if d.opts.DryRun {
		report.Outcome = Planned
		return report, nil
	}

	d.setStatus(Rendering)
	if err := d.renderer.Render(ctx, info, report.Cues, d.opts.Output); err != nil {
		return report, d.fail(report, fmt.Errorf("render: %w", err))
	}

	report.Outcome = Rendered
	log.Printf("Pipeline: job %s wrote %s", report.JobID, d.opts.Output)
	d.sender.Send(notify.MsgJobFinished, d.opts.Output)
	return report, nil
}

func (d *Driver) noSubtitles(report Report, reason string) Report {
	log.Printf("Pipeline: %s in %s, skipping subtitle creation", reason, filepath.Base(report.Video))
	report.Outcome = NoSubtitles
	report.Reason = reason
	d.sender.Send(notify.MsgNoSubtitles, filepath.Base(report.Video))
	return report
}

func (d *Driver) fail(report Report, err error) error {
	if errors.Is(err, context.Canceled) {
		log.Printf("Pipeline: job %s cancelled", report.JobID)
		return err
	}
	log.Printf("Pipeline: job %s failed: %v", report.JobID, err)
	d.sender.Send(notify.MsgJobFailed, err.Error())
	return err
}

// sameFile reports whether a and b name the same file, following symlinks
// when both exist.
func sameFile(a, b string) bool {
	if ai, err := os.Stat(a); err == nil {
		if bi, err := os.Stat(b); err == nil {
			return os.SameFile(ai, bi)
		}
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// FFprobe adapts media.Probe to Prober.
type FFprobe struct {
	Binary string
}

func (p FFprobe) Probe(ctx context.Context, path string) (media.VideoInfo, error) {
	return media.Probe(ctx, p.Binary, path)
}

// AudioExtractor adapts media.Extractor to Extractor.
type AudioExtractor struct {
	*media.Extractor
}

func (e AudioExtractor) ExtractAudio(ctx context.Context, videoPath string) (transcriber.Audio, error) {
	audio, err := e.Extractor.ExtractAudio(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	return audio, nil
}

// ffprobeFor returns the ffprobe binary that sits beside ffmpegPath.
func ffprobeFor(ffmpegPath string) string {
	if ffmpegPath == "" || ffmpegPath == "ffmpeg" {
		return "ffprobe"
	}
	dir, base := filepath.Split(ffmpegPath)
	if base != "ffmpeg" {
		return "ffprobe"
	}
	return filepath.Join(dir, "ffprobe")
}
