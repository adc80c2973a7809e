package config

import (
	"reflect"
	"time"

	"github.com/leonardotrapani/burnsub/internal/notify"
)

type Config struct {
	General       GeneralConfig             `toml:"general"`
	Audio         AudioConfig               `toml:"audio"`
	Transcription TranscriptionConfig       `toml:"transcription"`
	Translation   TranslationConfig         `toml:"translation"`
	Captions      CaptionsConfig            `toml:"captions"`
	Render        RenderConfig              `toml:"render"`
	Notifications NotificationsConfig       `toml:"notifications"`
	Providers     map[string]ProviderConfig `toml:"providers"`
}

// GeneralConfig holds global settings that apply across the application
type GeneralConfig struct {
	Output  string `toml:"output"`   // output video path
	TempDir string `toml:"temp_dir"` // "" = os.TempDir()
}

// ProviderConfig holds API key for a provider
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

type AudioConfig struct {
	SampleRate int `toml:"sample_rate"`
	Channels   int `toml:"channels"`
}

type TranscriptionConfig struct {
	Provider     string        `toml:"provider"`
	Model        string        `toml:"model"`
	Language     string        `toml:"language"` // "" or "auto" = detect
	ChunkSeconds float64       `toml:"chunk_seconds"`
	Threads      int           `toml:"threads"` // CPU threads for local transcription (0 = auto: NumCPU-1)
	Timeout      time.Duration `toml:"timeout"`
}

// TranslationConfig configures per-chunk translation
type TranslationConfig struct {
	Enabled  bool          `toml:"enabled"`
	Provider string        `toml:"provider"`
	Model    string        `toml:"model"`
	Source   string        `toml:"source"`
	Target   string        `toml:"target"`
	Timeout  time.Duration `toml:"timeout"`
}

type CaptionsConfig struct {
	WordsPerCue int `toml:"words_per_cue"`
}

type RenderConfig struct {
	VideoCodec   string  `toml:"video_codec"`
	AudioCodec   string  `toml:"audio_codec"`
	Threads      int     `toml:"threads"`
	Font         string  `toml:"font"`
	FallbackFont string  `toml:"fallback_font"`
	FontSize     int     `toml:"font_size"`
	FontColor    string  `toml:"font_color"`
	BoxHeight    int     `toml:"box_height"`
	WidthRatio   float64 `toml:"width_ratio"`
}

type NotificationsConfig struct {
	Enabled  bool           `toml:"enabled"`
	Type     string         `toml:"type"` // "desktop", "log", "none"
	Messages MessagesConfig `toml:"messages"`
}

type MessageConfig struct {
	Title string `toml:"title"`
	Body  string `toml:"body"`
}

type MessagesConfig struct {
	JobFinished    MessageConfig `toml:"job_finished"`
	NoSubtitles    MessageConfig `toml:"no_subtitles"`
	JobFailed      MessageConfig `toml:"job_failed"`
	ConfigReloaded MessageConfig `toml:"config_reloaded"`
}

// Resolve merges user config with defaults from MessageDefs
func (m *MessagesConfig) Resolve() map[notify.MessageType]notify.Message {
	result := make(map[notify.MessageType]notify.Message)

	v := reflect.ValueOf(m).Elem()
	t := v.Type()
	tagToField := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		tagToField[t.Field(i).Tag.Get("toml")] = i
	}

	for _, def := range notify.MessageDefs {
		msg := notify.Message{
			Title:   def.DefaultTitle,
			Body:    def.DefaultBody,
			IsError: def.IsError,
		}
		if idx, ok := tagToField[def.ConfigKey]; ok {
			userMsg := v.Field(idx).Interface().(MessageConfig)
			if userMsg.Title != "" {
				msg.Title = userMsg.Title
			}
			if userMsg.Body != "" {
				msg.Body = userMsg.Body
			}
		}
		result[def.Type] = msg
	}
	return result
}
