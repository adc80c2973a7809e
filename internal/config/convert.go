package config

import (
	"os"

	"github.com/leonardotrapani/burnsub/internal/language"
	"github.com/leonardotrapani/burnsub/internal/models/whisper"
	"github.com/leonardotrapani/burnsub/internal/notify"
	"github.com/leonardotrapani/burnsub/internal/provider"
	"github.com/leonardotrapani/burnsub/internal/render"
	"github.com/leonardotrapani/burnsub/internal/transcriber"
	"github.com/leonardotrapani/burnsub/internal/translator"
)

func (c *Config) ToRecognizerConfig() transcriber.Config {
	config := transcriber.Config{
		Provider: c.Transcription.Provider,
		Model:    c.Transcription.Model,
		Language: language.NormalizeSource(c.Transcription.Language),
		Threads:  c.Transcription.Threads,
		Timeout:  c.Transcription.Timeout,
	}

	if c.Transcription.Provider == provider.ProviderWhisperCpp {
		if store, err := whisper.DefaultStore(); err == nil {
			config.ModelPath = store.Path(c.Transcription.Model)
		}
	} else {
		config.APIKey = c.resolveAPIKeyForProvider(c.Transcription.Provider)
	}

	return config
}

// ToTranscriberOptions returns the translation direction for each chunk
func (c *Config) ToTranscriberOptions() transcriber.Options {
	opts := transcriber.DefaultOptions()
	if c.Translation.Source != "" {
		opts.SourceLanguage = c.Translation.Source
	}
	if c.Translation.Target != "" {
		opts.TargetLanguage = c.Translation.Target
	}
	return opts
}

func (c *Config) ToTranslatorConfig() translator.Config {
	config := translator.Config{
		Enabled:  c.Translation.Enabled,
		Provider: c.Translation.Provider,
		Model:    c.Translation.Model,
		Timeout:  c.Translation.Timeout,
	}
	if c.Translation.Enabled && c.Translation.Provider != "" {
		config.APIKey = c.resolveAPIKeyForProvider(c.Translation.Provider)
	}
	return config
}

func (c *Config) ToRenderOptions() render.Options {
	return render.Options{
		TempDir:      c.General.TempDir,
		VideoCodec:   c.Render.VideoCodec,
		AudioCodec:   c.Render.AudioCodec,
		Threads:      c.Render.Threads,
		Font:         c.Render.Font,
		FallbackFont: c.Render.FallbackFont,
		FontSize:     c.Render.FontSize,
		FontColor:    c.Render.FontColor,
		BoxHeight:    c.Render.BoxHeight,
		WidthRatio:   c.Render.WidthRatio,
	}
}

// Notifier returns the configured notification sender
func (c *Config) Notifier() *notify.Sender {
	kind := c.Notifications.Type
	if !c.Notifications.Enabled {
		kind = "none"
	}
	return notify.NewSender(notify.New(kind), c.Notifications.Messages.Resolve())
}

// resolveAPIKeyForProvider returns the API key for a provider from multiple sources
func (c *Config) resolveAPIKeyForProvider(providerName string) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[providerName]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}

	if envVar := provider.EnvVarForProvider(providerName); envVar != "" {
		return os.Getenv(envVar)
	}

	return ""
}
