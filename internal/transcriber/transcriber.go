package transcriber

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/leonardotrapani/burnsub/internal/media"
)

// Chunk is one window of PCM audio submitted to a recognizer.
type Chunk struct {
	Window
	PCM    []byte
	Format media.Format
}

// Recognizer turns a chunk of speech into text, detecting the spoken
// language itself. It returns ErrUnintelligible (or blank text) when the
// audio holds nothing it can interpret.
type Recognizer interface {
	Recognize(ctx context.Context, chunk Chunk) (string, error)
}

// Translator translates recognized text. source may be "auto".
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Audio is a decoded audio artifact the transcriber consumes and releases.
type Audio interface {
	Duration() float64
	Open() (media.Stream, error)
	Release() error
}

// Options selects the translation direction.
type Options struct {
	SourceLanguage string
	TargetLanguage string
}

// DefaultOptions translates from an auto-detected language to English.
func DefaultOptions() Options {
	return Options{SourceLanguage: "auto", TargetLanguage: "en"}
}

// Result is what a transcription produced, including partial results when
// the loop stopped early.
type Result struct {
	Fragments    []string
	Windows      int // planned
	Processed    int // chunks submitted to the recognizer
	Skipped      int // unintelligible chunks
	StoppedEarly bool
	StopErr      error
}

// Transcript returns the aggregated fragments.
func (r Result) Transcript() string {
	return Aggregate(r.Fragments)
}

// Transcriber drives chunked recognition and translation over an audio
// stream, one chunk at a time.
type Transcriber struct {
	recognizer Recognizer
	translator Translator
	opts       Options
}

func New(recognizer Recognizer, translator Translator, opts Options) *Transcriber {
	if opts.SourceLanguage == "" {
		opts.SourceLanguage = "auto"
	}
	if opts.TargetLanguage == "" {
		opts.TargetLanguage = "en"
	}
	return &Transcriber{recognizer: recognizer, translator: translator, opts: opts}
}

// Transcribe consumes audio in windows of chunkLength seconds. It owns
// audio: the artifact is released on every return path, including panics.
//
// Unintelligible chunks are skipped. The first service error stops the
// loop and the fragments gathered so far are returned with a nil error;
// the cause is in Result.StopErr.
func (t *Transcriber) Transcribe(ctx context.Context, audio Audio, chunkLength float64) (result Result, err error) {
	defer func() {
		if rerr := audio.Release(); rerr != nil {
			log.Printf("Transcriber: cleanup failed: %v", rerr)
		}
	}()

	if chunkLength <= 0 {
		return result, fmt.Errorf("invalid chunk length: %v", chunkLength)
	}

	total := audio.Duration()
	windows := PlanWindows(total, chunkLength)
	result.Windows = len(windows)
	log.Printf("Transcriber: audio duration %.2fs, %d chunk(s) of up to %.2fs", total, len(windows), chunkLength)

	if len(windows) == 0 {
		return result, nil
	}

	stream, err := audio.Open()
	if err != nil {
		return result, fmt.Errorf("open audio: %w", err)
	}
	defer stream.Close()

	for _, w := range windows {
		pcm, err := stream.Record(w.Length)
		if err != nil {
			return result, fmt.Errorf("read chunk %d: %w", w.Index, err)
		}
		if len(pcm) == 0 {
			log.Printf("Transcriber: no samples at %.2fs, treating as end of stream", w.Offset)
			break
		}

		result.Processed++
		outcome := t.attempt(ctx, Chunk{Window: w, PCM: pcm, Format: stream.Format()})

		switch outcome.Kind {
		case OutcomeOK:
			result.Fragments = append(result.Fragments, outcome.Text)
		case OutcomeUnintelligible:
			result.Skipped++
			log.Printf("Transcriber: chunk %d (%.2fs-%.2fs) not understood, skipping", w.Index, w.Offset, w.End())
		case OutcomeServiceError:
			result.StoppedEarly = true
			result.StopErr = outcome.Err
			log.Printf("Transcriber: chunk %d: %v; stopping with %d fragment(s)", w.Index, outcome.Err, len(result.Fragments))
			return result, nil
		}
	}

	return result, nil
}

func (t *Transcriber) attempt(ctx context.Context, chunk Chunk) Outcome {
	outcome := Classify(t.recognizer.Recognize(ctx, chunk))
	if outcome.Kind != OutcomeOK {
		return outcome
	}
	log.Printf("Transcriber: chunk %d recognized (raw): %q", chunk.Index, outcome.Text)

	translated, err := t.translator.Translate(ctx, outcome.Text, t.opts.SourceLanguage, t.opts.TargetLanguage)
	if err != nil {
		return Outcome{Kind: OutcomeServiceError, Err: NewServiceError(StageTranslate, err)}
	}
	if strings.TrimSpace(translated) == "" {
		return Outcome{Kind: OutcomeUnintelligible, Err: ErrUnintelligible}
	}
	log.Printf("Transcriber: chunk %d translated -> %q", chunk.Index, translated)

	return Outcome{Kind: OutcomeOK, Text: translated}
}
