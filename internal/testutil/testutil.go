package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/burnsub/internal/captions"
	"github.com/leonardotrapani/burnsub/internal/config"
	"github.com/leonardotrapani/burnsub/internal/media"
	"github.com/leonardotrapani/burnsub/internal/transcriber"
)

// TestConfig returns a valid configuration for testing
func TestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Providers["openai"] = config.ProviderConfig{APIKey: "sk-test"}
	cfg.Transcription.Threads = 1
	cfg.Notifications.Enabled = true
	cfg.Notifications.Type = "log"
	return cfg
}

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	return configPath
}

// WriteWAV writes seconds of silent speech-format audio into dir and
// returns it as an AudioFile.
func WriteWAV(t *testing.T, dir string, seconds float64) *media.AudioFile {
	t.Helper()

	f, err := os.CreateTemp(dir, "burnsub-test-*.wav")
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	pcm := make([]byte, media.SpeechFormat.BytesFor(seconds))
	if _, err := f.Write(media.EncodeWAV(pcm, media.SpeechFormat)); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	f.Close()

	audio, err := media.NewAudioFile(f.Name())
	if err != nil {
		t.Fatalf("NewAudioFile: %v", err)
	}
	return audio
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// MockRecognizer returns scripted text per chunk index. Chunks without an
// entry in Texts or Errors recognize as Default.
type MockRecognizer struct {
	Texts   map[int]string
	Errors  map[int]error
	Default string

	mu    sync.Mutex
	calls []int
}

func NewMockRecognizer(defaultText string) *MockRecognizer {
	return &MockRecognizer{Default: defaultText}
}

func (m *MockRecognizer) Recognize(ctx context.Context, chunk transcriber.Chunk) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, chunk.Index)
	m.mu.Unlock()

	if err, ok := m.Errors[chunk.Index]; ok {
		return "", err
	}
	if text, ok := m.Texts[chunk.Index]; ok {
		return text, nil
	}
	return m.Default, nil
}

// Calls returns the chunk indexes submitted so far
func (m *MockRecognizer) Calls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls...)
}

// MockTranslator returns its input with an optional prefix
type MockTranslator struct {
	Prefix string
	Err    error
}

func (m *MockTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Prefix + text, nil
}

// MockProber returns a fixed VideoInfo
type MockProber struct {
	Info media.VideoInfo
	Err  error
}

func (m *MockProber) Probe(ctx context.Context, path string) (media.VideoInfo, error) {
	if m.Err != nil {
		return media.VideoInfo{}, m.Err
	}
	info := m.Info
	info.Path = path
	return info, nil
}

// MockExtractor writes a silent WAV of Seconds into Dir on each call
type MockExtractor struct {
	T       *testing.T
	Dir     string
	Seconds float64
	Err     error

	mu    sync.Mutex
	paths []string
}

func (m *MockExtractor) ExtractAudio(ctx context.Context, videoPath string) (transcriber.Audio, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	audio := WriteWAV(m.T, m.Dir, m.Seconds)
	m.mu.Lock()
	m.paths = append(m.paths, audio.Path)
	m.mu.Unlock()
	return audio, nil
}

// Paths returns every temp WAV handed out
func (m *MockExtractor) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

// MockRenderer records render calls and optionally writes the output file
type MockRenderer struct {
	Err         error
	WriteOutput bool

	mu    sync.Mutex
	Calls []RenderCall
}

type RenderCall struct {
	Video  media.VideoInfo
	Cues   []captions.Cue
	Output string
}

func (m *MockRenderer) Render(ctx context.Context, video media.VideoInfo, cues []captions.Cue, output string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, RenderCall{Video: video, Cues: cues, Output: output})
	m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if m.WriteOutput {
		if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
			return err
		}
		return os.WriteFile(output, []byte("rendered"), 0644)
	}
	return nil
}

// RenderCount returns how many times Render ran
func (m *MockRenderer) RenderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockNotifier records sent message types
type MockNotifier struct {
	mu   sync.Mutex
	Sent []string
}

func (m *MockNotifier) Notify(title, body string) {
	m.mu.Lock()
	m.Sent = append(m.Sent, title+": "+body)
	m.mu.Unlock()
}

func (m *MockNotifier) Error(msg string) {
	m.mu.Lock()
	m.Sent = append(m.Sent, "error: "+msg)
	m.mu.Unlock()
}

// Messages returns a copy of the recorded notifications
func (m *MockNotifier) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Sent...)
}

// ErrBackend is a generic service failure for tests
var ErrBackend = errors.New("503 service unavailable")
