package provider

import (
	"fmt"
	"sort"
	"strings"
)

// Provider describes a speech recognition and/or translation backend
type Provider struct {
	Name    string
	BaseURL string // OpenAI-compatible API root; empty for local providers
	Local   bool

	KeyPrefix string // expected API key prefix, empty when unchecked

	RecognitionModels []string
	TranslationModels []string
}

// RequiresAPIKey reports whether requests need an API key
func (p Provider) RequiresAPIKey() bool {
	return !p.Local
}

// ValidateAPIKey checks the key against the provider's known prefix
func (p Provider) ValidateAPIKey(key string) bool {
	if p.KeyPrefix == "" {
		return key != ""
	}
	return strings.HasPrefix(key, p.KeyPrefix)
}

// SupportsRecognition reports whether the provider can transcribe audio
func (p Provider) SupportsRecognition() bool {
	return len(p.RecognitionModels) > 0
}

// SupportsTranslation reports whether the provider can translate text
func (p Provider) SupportsTranslation() bool {
	return len(p.TranslationModels) > 0
}

// DefaultRecognitionModel returns the first recognition model, or ""
func (p Provider) DefaultRecognitionModel() string {
	if len(p.RecognitionModels) == 0 {
		return ""
	}
	return p.RecognitionModels[0]
}

// DefaultTranslationModel returns the first translation model, or ""
func (p Provider) DefaultTranslationModel() string {
	if len(p.TranslationModels) == 0 {
		return ""
	}
	return p.TranslationModels[0]
}

// HasRecognitionModel reports whether model is a known recognition model
func (p Provider) HasRecognitionModel(model string) bool {
	return contains(p.RecognitionModels, model)
}

// HasTranslationModel reports whether model is a known translation model
func (p Provider) HasTranslationModel(model string) bool {
	return contains(p.TranslationModels, model)
}

var registry = map[string]Provider{
	ProviderOpenAI: {
		Name:              ProviderOpenAI,
		BaseURL:           "https://api.openai.com/v1",
		KeyPrefix:         "sk-",
		RecognitionModels: []string{"whisper-1", "gpt-4o-transcribe", "gpt-4o-mini-transcribe"},
		TranslationModels: []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"},
	},
	ProviderGroq: {
		Name:              ProviderGroq,
		BaseURL:           "https://api.groq.com/openai/v1",
		KeyPrefix:         "gsk_",
		RecognitionModels: []string{"whisper-large-v3-turbo", "whisper-large-v3"},
		TranslationModels: []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"},
	},
	ProviderWhisperCpp: {
		Name:              ProviderWhisperCpp,
		Local:             true,
		RecognitionModels: []string{"base", "tiny", "small", "medium", "large-v3"},
	},
}

// Get returns a provider by name
func Get(name string) (Provider, error) {
	p, ok := registry[name]
	if !ok {
		return Provider{}, fmt.Errorf("unknown provider: %s", name)
	}
	return p, nil
}

// List returns all registered provider names, sorted
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListRecognition returns providers that support speech recognition, sorted
func ListRecognition() []string {
	var names []string
	for _, name := range List() {
		if registry[name].SupportsRecognition() {
			names = append(names, name)
		}
	}
	return names
}

// ListTranslation returns providers that support text translation, sorted
func ListTranslation() []string {
	var names []string
	for _, name := range List() {
		if registry[name].SupportsTranslation() {
			names = append(names, name)
		}
	}
	return names
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
