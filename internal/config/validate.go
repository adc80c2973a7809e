package config

import (
	"fmt"
	"strings"

	"github.com/leonardotrapani/burnsub/internal/language"
	"github.com/leonardotrapani/burnsub/internal/provider"
)

func (c *Config) Validate() error {
	if c.General.Output == "" {
		return fmt.Errorf("invalid general.output: empty")
	}

	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("invalid audio.sample_rate: %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels <= 0 {
		return fmt.Errorf("invalid audio.channels: %d", c.Audio.Channels)
	}

	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}

	if c.Captions.WordsPerCue <= 0 {
		return fmt.Errorf("invalid captions.words_per_cue: %d", c.Captions.WordsPerCue)
	}

	if err := c.validateRender(); err != nil {
		return err
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}

func (c *Config) validateTranscription() error {
	t := c.Transcription
	if t.Provider == "" {
		return fmt.Errorf("invalid transcription.provider: empty")
	}

	p, err := provider.Get(t.Provider)
	if err != nil || !p.SupportsRecognition() {
		return fmt.Errorf("unsupported transcription.provider: %s (must be %s)", t.Provider, strings.Join(provider.ListRecognition(), ", "))
	}

	if p.RequiresAPIKey() && c.resolveAPIKeyForProvider(t.Provider) == "" {
		return fmt.Errorf("%s API key required: not found in config (providers.%s.api_key) or environment variable (%s)",
			t.Provider, t.Provider, provider.EnvVarForProvider(t.Provider))
	}

	if t.Model == "" {
		return fmt.Errorf("invalid transcription.model: empty")
	}
	if !p.HasRecognitionModel(t.Model) {
		return fmt.Errorf("invalid model for %s: %s (must be %s)", t.Provider, t.Model, strings.Join(p.RecognitionModels, ", "))
	}

	if !language.IsValidSource(t.Language) {
		return fmt.Errorf("invalid transcription.language: %s (use \"auto\" or empty for auto-detect, or ISO-639-1 codes like 'en', 'es', 'fr')", t.Language)
	}

	if t.ChunkSeconds <= 0 {
		return fmt.Errorf("invalid transcription.chunk_seconds: %v", t.ChunkSeconds)
	}
	if t.Threads < 0 {
		return fmt.Errorf("invalid transcription.threads: %d", t.Threads)
	}
	if t.Timeout < 0 {
		return fmt.Errorf("invalid transcription.timeout: %v", t.Timeout)
	}
	return nil
}

func (c *Config) validateTranslation() error {
	t := c.Translation
	if !t.Enabled {
		return nil
	}

	if t.Provider == "" {
		return fmt.Errorf("translation.provider required when translation.enabled = true")
	}
	p, err := provider.Get(t.Provider)
	if err != nil || !p.SupportsTranslation() {
		return fmt.Errorf("invalid translation.provider: %s (must be %s)", t.Provider, strings.Join(provider.ListTranslation(), ", "))
	}
	if c.resolveAPIKeyForProvider(t.Provider) == "" {
		return fmt.Errorf("%s API key required for translation: not found in config (providers.%s.api_key) or environment variable (%s)",
			t.Provider, t.Provider, provider.EnvVarForProvider(t.Provider))
	}
	if t.Model == "" {
		return fmt.Errorf("translation.model required when translation.enabled = true")
	}
	if !language.IsValidSource(t.Source) {
		return fmt.Errorf("invalid translation.source: %s", t.Source)
	}
	if !language.IsValidTarget(t.Target) {
		return fmt.Errorf("invalid translation.target: %q (must be a language code such as 'en')", t.Target)
	}
	if t.Timeout < 0 {
		return fmt.Errorf("invalid translation.timeout: %v", t.Timeout)
	}
	return nil
}

func (c *Config) validateRender() error {
	r := c.Render
	if r.VideoCodec == "" {
		return fmt.Errorf("invalid render.video_codec: empty")
	}
	if r.AudioCodec == "" {
		return fmt.Errorf("invalid render.audio_codec: empty")
	}
	if r.Threads < 0 {
		return fmt.Errorf("invalid render.threads: %d", r.Threads)
	}
	if r.FontSize <= 0 {
		return fmt.Errorf("invalid render.font_size: %d", r.FontSize)
	}
	if r.BoxHeight < r.FontSize {
		return fmt.Errorf("invalid render.box_height: %d (must fit one line of font_size %d)", r.BoxHeight, r.FontSize)
	}
	if r.WidthRatio <= 0 || r.WidthRatio > 1 {
		return fmt.Errorf("invalid render.width_ratio: %v (must be in (0, 1])", r.WidthRatio)
	}
	if r.FontColor == "" {
		return fmt.Errorf("invalid render.font_color: empty")
	}
	return nil
}
