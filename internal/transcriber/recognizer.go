package transcriber

import (
	"fmt"
	"time"

	"github.com/leonardotrapani/burnsub/internal/provider"
)

// Config for the recognizer backend
type Config struct {
	Provider  string
	APIKey    string
	BaseURL   string // overrides the provider's default endpoint
	Model     string
	Language  string // empty for automatic detection
	ModelPath string // whisper-cpp model file
	Threads   int
	Timeout   time.Duration // per request, 0 = none
}

// NewRecognizer creates the recognizer adapter for cfg.Provider
func NewRecognizer(cfg Config) (Recognizer, error) {
	p, err := provider.Get(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if !p.SupportsRecognition() {
		return nil, fmt.Errorf("provider %s does not support speech recognition", cfg.Provider)
	}

	if cfg.Model == "" {
		cfg.Model = p.DefaultRecognitionModel()
	}

	switch cfg.Provider {
	case provider.ProviderOpenAI, provider.ProviderGroq:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s API key required", cfg.Provider)
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = p.BaseURL
		}
		return NewOpenAIAdapter(cfg.Provider, cfg), nil

	case provider.ProviderWhisperCpp:
		if cfg.ModelPath == "" {
			return nil, fmt.Errorf("whisper-cpp model path required")
		}
		return NewWhisperCppAdapter(cfg.ModelPath, cfg.Language, cfg.Threads), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
