package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/leonardotrapani/burnsub/internal/notify"
)

// createTestConfig returns a valid configuration for testing
func createTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Providers["openai"] = ProviderConfig{APIKey: "sk-test"}
	return cfg
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	return path
}

func TestConfig_Validate(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "empty output", mutate: func(c *Config) { c.General.Output = "" }, wantErr: "general.output"},
		{name: "bad sample rate", mutate: func(c *Config) { c.Audio.SampleRate = 0 }, wantErr: "audio.sample_rate"},
		{name: "bad channels", mutate: func(c *Config) { c.Audio.Channels = -1 }, wantErr: "audio.channels"},
		{name: "no provider", mutate: func(c *Config) { c.Transcription.Provider = "" }, wantErr: "transcription.provider"},
		{name: "unknown provider", mutate: func(c *Config) { c.Transcription.Provider = "deepgram" }, wantErr: "unsupported transcription.provider"},
		{name: "missing openai key", mutate: func(c *Config) { delete(c.Providers, "openai") }, wantErr: "openai API key required"},
		{name: "model from another provider", mutate: func(c *Config) { c.Transcription.Model = "whisper-large-v3" }, wantErr: "invalid model for openai"},
		{name: "bad language", mutate: func(c *Config) { c.Transcription.Language = "klingon" }, wantErr: "transcription.language"},
		{name: "auto language", mutate: func(c *Config) { c.Transcription.Language = "auto" }},
		{name: "pinned language", mutate: func(c *Config) { c.Transcription.Language = "es" }},
		{name: "zero chunk", mutate: func(c *Config) { c.Transcription.ChunkSeconds = 0 }, wantErr: "chunk_seconds"},
		{name: "negative threads", mutate: func(c *Config) { c.Transcription.Threads = -2 }, wantErr: "transcription.threads"},
		{name: "translation disabled skips checks", mutate: func(c *Config) {
			c.Translation.Enabled = false
			c.Translation.Provider = "nope"
		}},
		{name: "translation via local provider", mutate: func(c *Config) { c.Translation.Provider = "whisper-cpp" }, wantErr: "invalid translation.provider"},
		{name: "translation without groq key", mutate: func(c *Config) { c.Translation.Provider = "groq" }, wantErr: "groq API key required for translation"},
		{name: "auto target", mutate: func(c *Config) { c.Translation.Target = "auto" }, wantErr: "translation.target"},
		{name: "empty translation model", mutate: func(c *Config) { c.Translation.Model = "" }, wantErr: "translation.model"},
		{name: "zero words per cue", mutate: func(c *Config) { c.Captions.WordsPerCue = 0 }, wantErr: "words_per_cue"},
		{name: "empty video codec", mutate: func(c *Config) { c.Render.VideoCodec = "" }, wantErr: "render.video_codec"},
		{name: "box smaller than font", mutate: func(c *Config) { c.Render.BoxHeight = 20 }, wantErr: "render.box_height"},
		{name: "width ratio above one", mutate: func(c *Config) { c.Render.WidthRatio = 1.5 }, wantErr: "render.width_ratio"},
		{name: "bad notification type", mutate: func(c *Config) { c.Notifications.Type = "email" }, wantErr: "notifications.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_WhisperCppNeedsNoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg := createTestConfig()
	cfg.Transcription.Provider = "whisper-cpp"
	cfg.Transcription.Model = "base"
	cfg.Translation.Enabled = false
	delete(cfg.Providers, "openai")

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	cfg.Transcription.Model = "base.en"
	if err := cfg.Validate(); err == nil {
		t.Error("English-only whisper model should be rejected")
	}
}

func TestConfig_Validate_EnvVarAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with env key error = %v", err)
	}
}

func TestLoadFrom(t *testing.T) {
	path := writeConfig(t, `[general]
output = "out/subbed.mp4"

[transcription]
provider = "groq"
model = "whisper-large-v3"
chunk_seconds = 15.5
timeout = "30s"

[translation]
provider = "groq"
model = "llama-3.1-8b-instant"

[captions]
words_per_cue = 8

[providers.groq]
api_key = "gsk_test"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.General.Output != "out/subbed.mp4" {
		t.Errorf("Output = %s", cfg.General.Output)
	}
	if cfg.Transcription.ChunkSeconds != 15.5 || cfg.Transcription.Timeout != 30*time.Second {
		t.Errorf("Transcription = %+v", cfg.Transcription)
	}
	if cfg.Captions.WordsPerCue != 8 {
		t.Errorf("WordsPerCue = %d", cfg.Captions.WordsPerCue)
	}
	// keys missing from the file keep their defaults
	if cfg.Render.FontSize != 32 || cfg.Render.VideoCodec != "libx264" || cfg.Translation.Target != "en" {
		t.Errorf("defaults not kept: %+v %+v", cfg.Render, cfg.Translation)
	}
	if cfg.Transcription.Threads < 1 {
		t.Errorf("Threads default not applied: %d", cfg.Transcription.Threads)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("missing file error = %v, want ErrConfigNotFound", err)
	}

	path := writeConfig(t, "[transcription\nprovider = ")
	if _, err := LoadFrom(path); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("invalid TOML error = %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.General.Output != DefaultOutput || cfg.Transcription.ChunkSeconds != 20 {
		t.Errorf("expected defaults, got %+v", cfg.General)
	}
}

func TestGetConfigPath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if path != filepath.Join(dir, "burnsub", "config.toml") {
		t.Errorf("GetConfigPath() = %s", path)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("config directory not created: %v", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := createTestConfig()
	cfg.Render.Font = "Noto Sans"
	cfg.Translation.Timeout = 45 * time.Second
	cfg.Notifications.Messages.JobFinished = MessageConfig{Title: "Done"}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Render.Font != "Noto Sans" || loaded.Translation.Timeout != 45*time.Second {
		t.Errorf("round trip lost values: %+v %+v", loaded.Render, loaded.Translation)
	}
	if loaded.Providers["openai"].APIKey != "sk-test" {
		t.Errorf("providers = %+v", loaded.Providers)
	}
	if loaded.Notifications.Messages.JobFinished.Title != "Done" {
		t.Errorf("messages = %+v", loaded.Notifications.Messages)
	}
}

func TestConfig_ToRecognizerConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg := DefaultConfig()
	cfg.Transcription.Language = "auto"
	cfg.Transcription.Timeout = time.Minute

	rc := cfg.ToRecognizerConfig()
	if rc.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, want key from environment", rc.APIKey)
	}
	if rc.Language != "" {
		t.Errorf("Language = %q, want empty for detection", rc.Language)
	}
	if rc.Timeout != time.Minute || rc.Model != "whisper-1" {
		t.Errorf("config = %+v", rc)
	}

	cfg.Providers["openai"] = ProviderConfig{APIKey: "sk-config"}
	if got := cfg.ToRecognizerConfig().APIKey; got != "sk-config" {
		t.Errorf("config key should win over env, got %q", got)
	}
}

func TestConfig_ToRecognizerConfig_WhisperCpp(t *testing.T) {
	t.Setenv("BURNSUB_MODELS_DIR", "/models")

	cfg := DefaultConfig()
	cfg.Transcription.Provider = "whisper-cpp"
	cfg.Transcription.Model = "small"
	cfg.Transcription.Threads = 3

	rc := cfg.ToRecognizerConfig()
	if rc.ModelPath != filepath.Join("/models", "ggml-small.bin") {
		t.Errorf("ModelPath = %s", rc.ModelPath)
	}
	if rc.APIKey != "" || rc.Threads != 3 {
		t.Errorf("config = %+v", rc)
	}
}

func TestConfig_ToTranslatorConfig(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_env")

	cfg := DefaultConfig()
	cfg.Translation.Provider = "groq"
	cfg.Translation.Model = "llama-3.1-8b-instant"

	tc := cfg.ToTranslatorConfig()
	if !tc.Enabled || tc.APIKey != "gsk_env" || tc.Model != "llama-3.1-8b-instant" || tc.Timeout != time.Minute {
		t.Errorf("translator config = %+v", tc)
	}

	cfg.Translation.Enabled = false
	if tc := cfg.ToTranslatorConfig(); tc.Enabled || tc.APIKey != "" {
		t.Errorf("disabled translator config = %+v", tc)
	}
}

func TestConfig_ToTranscriberOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.ToTranscriberOptions()
	if opts.SourceLanguage != "auto" || opts.TargetLanguage != "en" {
		t.Errorf("opts = %+v", opts)
	}

	cfg.Translation.Target = "fr"
	if got := cfg.ToTranscriberOptions().TargetLanguage; got != "fr" {
		t.Errorf("TargetLanguage = %s", got)
	}
}

func TestConfig_ToRenderOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.TempDir = "/scratch"

	ro := cfg.ToRenderOptions()
	if ro.TempDir != "/scratch" || ro.VideoCodec != "libx264" || ro.AudioCodec != "aac" || ro.Threads != 4 {
		t.Errorf("render options = %+v", ro)
	}
	if ro.FallbackFont != "DejaVu Sans" || ro.FontSize != 32 || ro.BoxHeight != 120 || ro.WidthRatio != 0.9 {
		t.Errorf("render styling = %+v", ro)
	}
}

func TestConfig_Notifier(t *testing.T) {
	cfg := DefaultConfig()
	if _, ok := cfg.Notifier().Notifier.(notify.Nop); !ok {
		t.Error("disabled notifications should use Nop")
	}

	cfg.Notifications.Enabled = true
	cfg.Notifications.Type = "log"
	if _, ok := cfg.Notifier().Notifier.(notify.Log); !ok {
		t.Error("log notifications should use Log")
	}
}

func TestMessagesConfig_Resolve(t *testing.T) {
	var msgs MessagesConfig
	resolved := msgs.Resolve()
	if len(resolved) != len(notify.MessageDefs) {
		t.Fatalf("resolved %d messages, want %d", len(resolved), len(notify.MessageDefs))
	}
	if resolved[notify.MsgJobFinished].Title != "Subtitles Ready" {
		t.Errorf("default title = %q", resolved[notify.MsgJobFinished].Title)
	}

	msgs.NoSubtitles = MessageConfig{Body: "nothing said in %s"}
	resolved = msgs.Resolve()
	got := resolved[notify.MsgNoSubtitles]
	if got.Title != "No Speech Found" || got.Body != "nothing said in %s" {
		t.Errorf("override = %+v", got)
	}
	if !resolved[notify.MsgJobFailed].IsError {
		t.Error("job_failed should be an error message")
	}
}

func TestManager_Reload(t *testing.T) {
	path := writeConfig(t, `[providers.openai]
api_key = "sk-test"
`)

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if m.GetConfig().Captions.WordsPerCue != 6 {
		t.Fatalf("initial config = %+v", m.GetConfig().Captions)
	}

	reloaded := make(chan int, 4)
	m.OnReload(func(c *Config) { reloaded <- c.Captions.WordsPerCue })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	defer m.Stop()

	// an invalid edit keeps the previous configuration
	m.reloadConfig()
	if err := os.WriteFile(path, []byte("[captions]\nwords_per_cue = 0\n[providers.openai]\napi_key = \"sk-test\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m.reloadConfig()
	if got := m.GetConfig().Captions.WordsPerCue; got != 6 {
		t.Errorf("invalid reload applied: words_per_cue = %d", got)
	}

	if err := os.WriteFile(path, []byte("[captions]\nwords_per_cue = 4\n[providers.openai]\napi_key = \"sk-test\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case n := <-reloaded:
			if n == 4 {
				if got := m.GetConfig().Captions.WordsPerCue; got != 4 {
					t.Errorf("GetConfig() words_per_cue = %d after reload", got)
				}
				return
			}
		case <-deadline:
			t.Fatal("config was not reloaded after write")
		}
	}
}
