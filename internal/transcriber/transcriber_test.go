package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leonardotrapani/burnsub/internal/media"
)

// writeWAV writes seconds of silent speech-format audio and returns it as
// an AudioFile.
func writeWAV(t *testing.T, seconds float64) *media.AudioFile {
	t.Helper()

	path := filepath.Join(t.TempDir(), "audio.wav")
	pcm := make([]byte, media.SpeechFormat.BytesFor(seconds))
	if err := os.WriteFile(path, media.EncodeWAV(pcm, media.SpeechFormat), 0600); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	audio, err := media.NewAudioFile(path)
	if err != nil {
		t.Fatalf("NewAudioFile: %v", err)
	}
	return audio
}

func assertRemoved(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed, stat err = %v", path, err)
	}
}

type scriptedRecognizer struct {
	// results by chunk index; missing entries recognize as "chunk N"
	results map[int]func() (string, error)
	calls   []Chunk
}

func (r *scriptedRecognizer) Recognize(ctx context.Context, chunk Chunk) (string, error) {
	r.calls = append(r.calls, chunk)
	if fn, ok := r.results[chunk.Index]; ok {
		return fn()
	}
	return fmt.Sprintf("chunk %d", chunk.Index), nil
}

type prefixTranslator struct {
	err     error
	failOn  string
	blankOn string
	sources []string
	targets []string
}

func (p *prefixTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	p.sources = append(p.sources, source)
	p.targets = append(p.targets, target)
	if p.err != nil && (p.failOn == "" || p.failOn == text) {
		return "", p.err
	}
	if p.blankOn == text {
		return " ", nil
	}
	return "en: " + text, nil
}

func TestTranscribe_AllChunks(t *testing.T) {
	audio := writeWAV(t, 2.5)
	rec := &scriptedRecognizer{}
	tr := &prefixTranslator{}

	result, err := New(rec, tr, DefaultOptions()).Transcribe(context.Background(), audio, 1)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	want := []string{"en: chunk 0", "en: chunk 1", "en: chunk 2"}
	if strings.Join(result.Fragments, "|") != strings.Join(want, "|") {
		t.Errorf("Fragments = %q, want %q", result.Fragments, want)
	}
	if result.Windows != 3 || result.Processed != 3 || result.StoppedEarly {
		t.Errorf("unexpected result %+v", result)
	}

	// the last window carries only the remaining half second
	wantBytes := []int{32000, 32000, 16000}
	for i, c := range rec.calls {
		if len(c.PCM) != wantBytes[i] {
			t.Errorf("chunk %d: %d bytes, want %d", i, len(c.PCM), wantBytes[i])
		}
		if c.Format != media.SpeechFormat {
			t.Errorf("chunk %d: format %+v", i, c.Format)
		}
	}

	for i := range tr.sources {
		if tr.sources[i] != "auto" || tr.targets[i] != "en" {
			t.Errorf("translate call %d used %s -> %s", i, tr.sources[i], tr.targets[i])
		}
	}

	assertRemoved(t, audio.Path)
}

func TestTranscribe_SkipsUnintelligible(t *testing.T) {
	audio := writeWAV(t, 4)
	rec := &scriptedRecognizer{results: map[int]func() (string, error){
		1: func() (string, error) { return "", ErrUnintelligible },
		2: func() (string, error) { return "   ", nil },
	}}

	result, err := New(rec, &prefixTranslator{}, DefaultOptions()).Transcribe(context.Background(), audio, 1)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if got := result.Transcript(); got != "en: chunk 0 en: chunk 3" {
		t.Errorf("Transcript() = %q", got)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}
	if len(rec.calls) != 4 {
		t.Errorf("recognizer called %d times, want 4", len(rec.calls))
	}
	assertRemoved(t, audio.Path)
}

func TestTranscribe_SkipsBlankTranslation(t *testing.T) {
	audio := writeWAV(t, 3)
	tr := &prefixTranslator{blankOn: "chunk 1"}

	result, err := New(&scriptedRecognizer{}, tr, DefaultOptions()).Transcribe(context.Background(), audio, 1)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if got := result.Transcript(); got != "en: chunk 0 en: chunk 2" {
		t.Errorf("Transcript() = %q", got)
	}
	if len(result.Fragments) != 2 || result.Skipped != 1 || result.StoppedEarly {
		t.Errorf("Fragments = %q, Skipped = %d, StoppedEarly = %v", result.Fragments, result.Skipped, result.StoppedEarly)
	}
	assertRemoved(t, audio.Path)
}

func TestTranscribe_ServiceErrorStops(t *testing.T) {
	audio := writeWAV(t, 3)
	backend := errors.New("connection refused")
	rec := &scriptedRecognizer{results: map[int]func() (string, error){
		1: func() (string, error) { return "", backend },
	}}

	result, err := New(rec, &prefixTranslator{}, DefaultOptions()).Transcribe(context.Background(), audio, 1)
	if err != nil {
		t.Fatalf("service errors should not be returned, got %v", err)
	}

	if len(result.Fragments) != 1 || result.Fragments[0] != "en: chunk 0" {
		t.Errorf("Fragments = %q", result.Fragments)
	}
	if !result.StoppedEarly {
		t.Error("StoppedEarly = false")
	}
	var svc *ServiceError
	if !errors.As(result.StopErr, &svc) || svc.Stage != StageRecognize || !errors.Is(result.StopErr, backend) {
		t.Errorf("StopErr = %v", result.StopErr)
	}
	if len(rec.calls) != 2 {
		t.Errorf("chunk after the failure was submitted: %d calls", len(rec.calls))
	}
	assertRemoved(t, audio.Path)
}

func TestTranscribe_TranslationErrorStops(t *testing.T) {
	audio := writeWAV(t, 3)
	tr := &prefixTranslator{err: errors.New("429 too many requests"), failOn: "chunk 1"}

	result, err := New(&scriptedRecognizer{}, tr, DefaultOptions()).Transcribe(context.Background(), audio, 1)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if len(result.Fragments) != 1 {
		t.Errorf("Fragments = %q, want only the first chunk", result.Fragments)
	}
	var svc *ServiceError
	if !errors.As(result.StopErr, &svc) || svc.Stage != StageTranslate {
		t.Errorf("StopErr = %v, want translate ServiceError", result.StopErr)
	}
	assertRemoved(t, audio.Path)
}

func TestTranscribe_ZeroDuration(t *testing.T) {
	audio := writeWAV(t, 0)
	rec := &scriptedRecognizer{}

	result, err := New(rec, &prefixTranslator{}, DefaultOptions()).Transcribe(context.Background(), audio, 20)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if len(result.Fragments) != 0 || len(rec.calls) != 0 {
		t.Errorf("expected no work, got %+v with %d calls", result, len(rec.calls))
	}
	assertRemoved(t, audio.Path)
}

func TestTranscribe_InvalidChunkLengthReleases(t *testing.T) {
	audio := writeWAV(t, 1)

	if _, err := New(&scriptedRecognizer{}, &prefixTranslator{}, DefaultOptions()).Transcribe(context.Background(), audio, 0); err == nil {
		t.Fatal("expected error for zero chunk length")
	}
	assertRemoved(t, audio.Path)
}

func TestTranscribe_PanicReleases(t *testing.T) {
	audio := writeWAV(t, 2)
	rec := &scriptedRecognizer{results: map[int]func() (string, error){
		0: func() (string, error) { panic("recognizer blew up") },
	}}

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic to propagate")
			}
		}()
		New(rec, &prefixTranslator{}, DefaultOptions()).Transcribe(context.Background(), audio, 1)
	}()

	assertRemoved(t, audio.Path)
}

// shortAudio reports a longer duration than its stream delivers.
type shortAudio struct {
	duration float64
	chunks   [][]byte
	openErr  error
	released int
}

func (a *shortAudio) Duration() float64 { return a.duration }

func (a *shortAudio) Open() (media.Stream, error) {
	if a.openErr != nil {
		return nil, a.openErr
	}
	return &sliceStream{chunks: a.chunks}, nil
}

func (a *shortAudio) Release() error {
	a.released++
	return nil
}

type sliceStream struct {
	chunks [][]byte
}

func (s *sliceStream) Record(seconds float64) ([]byte, error) {
	if len(s.chunks) == 0 {
		return nil, nil
	}
	next := s.chunks[0]
	s.chunks = s.chunks[1:]
	return next, nil
}

func (s *sliceStream) Format() media.Format { return media.SpeechFormat }
func (s *sliceStream) Close() error          { return nil }

func TestTranscribe_StopsOnEmptyWindow(t *testing.T) {
	audio := &shortAudio{duration: 5, chunks: [][]byte{make([]byte, 320), make([]byte, 320)}}
	rec := &scriptedRecognizer{}

	result, err := New(rec, &prefixTranslator{}, DefaultOptions()).Transcribe(context.Background(), audio, 1)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if result.Windows != 5 || result.Processed != 2 {
		t.Errorf("Windows = %d, Processed = %d; want 5 and 2", result.Windows, result.Processed)
	}
	if result.StoppedEarly {
		t.Error("running out of samples is not a service error")
	}
	if audio.released != 1 {
		t.Errorf("released %d times, want 1", audio.released)
	}
}

func TestTranscribe_OpenErrorReleases(t *testing.T) {
	audio := &shortAudio{duration: 5, openErr: errors.New("permission denied")}

	if _, err := New(&scriptedRecognizer{}, &prefixTranslator{}, DefaultOptions()).Transcribe(context.Background(), audio, 1); err == nil {
		t.Fatal("expected open error")
	}
	if audio.released != 1 {
		t.Errorf("released %d times, want 1", audio.released)
	}
}

func TestNew_DefaultsLanguages(t *testing.T) {
	tr := New(&scriptedRecognizer{}, &prefixTranslator{}, Options{})
	if tr.opts.SourceLanguage != "auto" || tr.opts.TargetLanguage != "en" {
		t.Errorf("opts = %+v", tr.opts)
	}
}
