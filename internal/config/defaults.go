package config

import (
	"time"

	"github.com/leonardotrapani/burnsub/internal/captions"
)

const DefaultOutput = "video_with_subtitles.mp4"

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			Output: DefaultOutput,
		},
		Audio: AudioConfig{
			SampleRate: 16000,
			Channels:   1,
		},
		Transcription: TranscriptionConfig{
			Provider:     "openai",
			Model:        "whisper-1",
			Language:     "",
			ChunkSeconds: 20,
			Threads:      0,
			Timeout:      2 * time.Minute,
		},
		Translation: TranslationConfig{
			Enabled:  true,
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Source:   "auto",
			Target:   "en",
			Timeout:  time.Minute,
		},
		Captions: CaptionsConfig{
			WordsPerCue: captions.DefaultWordsPerCue,
		},
		Render: RenderConfig{
			VideoCodec:   "libx264",
			AudioCodec:   "aac",
			Threads:      4,
			FallbackFont: "DejaVu Sans",
			FontSize:     32,
			FontColor:    "white",
			BoxHeight:    120,
			WidthRatio:   0.9,
		},
		Notifications: NotificationsConfig{
			Enabled: false,
			Type:    "log",
		},
		Providers: make(map[string]ProviderConfig),
	}
}
