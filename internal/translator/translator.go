package translator

import (
	"context"
	"fmt"
	"time"

	"github.com/leonardotrapani/burnsub/internal/provider"
)

// Translator translates recognized speech into the target language.
// source may be "auto" when the spoken language was not pinned.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Config holds translator configuration
type Config struct {
	Enabled  bool
	Provider string
	APIKey   string
	BaseURL  string // overrides the provider's default endpoint
	Model    string
	Timeout  time.Duration
}

// New creates the translator for cfg. A disabled translator passes text
// through untouched.
func New(cfg Config) (Translator, error) {
	if !cfg.Enabled {
		return Passthrough{}, nil
	}

	p, err := provider.Get(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if !p.SupportsTranslation() {
		return nil, fmt.Errorf("provider %s does not support translation", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key required", cfg.Provider)
	}
	if cfg.Model == "" {
		cfg.Model = p.DefaultTranslationModel()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = p.BaseURL
	}

	return NewChatAdapter(cfg.Provider, cfg), nil
}

// Passthrough returns its input unchanged.
type Passthrough struct{}

func (Passthrough) Translate(ctx context.Context, text, source, target string) (string, error) {
	return text, nil
}
