package tui

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/burnsub/internal/config"
	"github.com/leonardotrapani/burnsub/internal/language"
	"github.com/leonardotrapani/burnsub/internal/models/whisper"
	"github.com/leonardotrapani/burnsub/internal/provider"
)

// providerDisplayNames maps provider IDs to human-readable names
var providerDisplayNames = map[string]string{
	provider.ProviderOpenAI:     "OpenAI",
	provider.ProviderGroq:       "Groq",
	provider.ProviderWhisperCpp: "whisper.cpp (local)",
}

func providerDisplayName(name string) string {
	if display, ok := providerDisplayNames[name]; ok {
		return display
	}
	return name
}

func formatProvidersLabel(cfg *config.Config) string {
	configured := configuredProviders(cfg)
	if len(configured) == 0 {
		return "API Keys (none stored)"
	}
	return fmt.Sprintf("API Keys (%s)", strings.Join(configured, ", "))
}

func formatTranscriptionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Speech Recognition (%s/%s, %s)",
		cfg.Transcription.Provider, cfg.Transcription.Model, language.Label(cfg.Transcription.Language))
}

func formatTranslationLabel(cfg *config.Config) string {
	if !cfg.Translation.Enabled {
		return "Translation (disabled)"
	}
	return fmt.Sprintf("Translation (%s/%s → %s)", cfg.Translation.Provider, cfg.Translation.Model, cfg.Translation.Target)
}

func formatCaptionsLabel(cfg *config.Config) string {
	return fmt.Sprintf("Captions (%d words per cue)", cfg.Captions.WordsPerCue)
}

func formatRenderLabel(cfg *config.Config) string {
	font := cfg.Render.Font
	if font == "" {
		font = cfg.Render.FallbackFont
	}
	return fmt.Sprintf("Rendering (%s %dpx, %s)", font, cfg.Render.FontSize, cfg.Render.VideoCodec)
}

func formatNotificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "Notifications (disabled)"
	}
	return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
}

// configuredProviders returns providers with a stored API key, sorted
func configuredProviders(cfg *config.Config) []string {
	var names []string
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func recognitionProviderOptions() []huh.Option[string] {
	var options []huh.Option[string]
	for _, name := range provider.ListRecognition() {
		options = append(options, huh.NewOption(providerDisplayName(name), name))
	}
	return options
}

func translationProviderOptions() []huh.Option[string] {
	var options []huh.Option[string]
	for _, name := range provider.ListTranslation() {
		options = append(options, huh.NewOption(providerDisplayName(name), name))
	}
	return options
}

// recognitionModelOptions lists a provider's models; local models carry
// their download size and install state.
func recognitionModelOptions(providerName string) []huh.Option[string] {
	p, err := provider.Get(providerName)
	if err != nil {
		return nil
	}

	var store *whisper.Store
	if p.Local {
		store, _ = whisper.DefaultStore()
	}

	var options []huh.Option[string]
	for _, id := range p.RecognitionModels {
		label := id
		if p.Local {
			if info := whisper.GetModel(id); info != nil {
				label = fmt.Sprintf("%s (%s)", info.Name, info.Size)
			}
			if store != nil && store.IsInstalled(id) {
				label += " [installed]"
			}
		}
		options = append(options, huh.NewOption(label, id))
	}
	return options
}

func translationModelOptions(providerName string) []huh.Option[string] {
	p, err := provider.Get(providerName)
	if err != nil {
		return nil
	}
	var options []huh.Option[string]
	for _, id := range p.TranslationModels {
		options = append(options, huh.NewOption(id, id))
	}
	return options
}

func sourceLanguageOptions() []huh.Option[string] {
	options := []huh.Option[string]{huh.NewOption(language.Auto.Name, "")}
	for _, lang := range language.List() {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", lang.Name, lang.Code), lang.Code))
	}
	return options
}

func validateAPIKey(providerName string) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		p, err := provider.Get(providerName)
		if err != nil {
			return err
		}
		if !p.ValidateAPIKey(s) {
			return fmt.Errorf("%s keys start with %q", providerDisplayName(providerName), p.KeyPrefix)
		}
		return nil
	}
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a whole number greater than 0")
	}
	return nil
}

func validatePositiveFloat(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return errors.New("enter a number greater than 0")
	}
	return nil
}

func validateTarget(s string) error {
	if !language.IsValidTarget(s) {
		return errors.New("enter a language code such as 'en'")
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// maskKey shows only the first and last characters of a key
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// summaryLines renders the configuration as label/value lines
func summaryLines(cfg *config.Config) []string {
	line := func(label, value string) string {
		return fmt.Sprintf("  %s %s", StyleLabel.Render(label), value)
	}

	lines := []string{
		line("API keys:", strings.Join(configuredProviders(cfg), ", ")),
		line("Recognition:", fmt.Sprintf("%s (%s)", cfg.Transcription.Provider, cfg.Transcription.Model)),
		line("Language:", language.Label(cfg.Transcription.Language)),
		line("Chunk length:", formatFloat(cfg.Transcription.ChunkSeconds)+"s"),
	}
	if cfg.Translation.Enabled {
		lines = append(lines, line("Translation:", fmt.Sprintf("%s (%s) → %s", cfg.Translation.Provider, cfg.Translation.Model, language.Label(cfg.Translation.Target))))
	} else {
		lines = append(lines, line("Translation:", "disabled"))
	}
	lines = append(lines,
		line("Words per cue:", strconv.Itoa(cfg.Captions.WordsPerCue)),
		line("Rendering:", formatRenderLabel(cfg)),
	)
	if cfg.Notifications.Enabled {
		lines = append(lines, line("Notifications:", cfg.Notifications.Type))
	} else {
		lines = append(lines, line("Notifications:", "disabled"))
	}
	return lines
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	fmt.Println()
	for _, l := range summaryLines(cfg) {
		fmt.Println(l)
	}
	fmt.Println()

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}
