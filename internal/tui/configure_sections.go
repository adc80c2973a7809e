package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/burnsub/internal/config"
	"github.com/leonardotrapani/burnsub/internal/provider"
)

// editProviders asks for an API key per remote provider. Empty input keeps
// the stored key.
func editProviders(cfg *config.Config) error {
	var names []string
	for _, name := range provider.List() {
		p, _ := provider.Get(name)
		if p.RequiresAPIKey() {
			names = append(names, name)
		}
	}

	keys := make([]string, len(names))
	var fields []huh.Field
	for i, name := range names {
		desc := "Leave empty to keep the current key"
		if env := provider.EnvVarForProvider(name); env != "" {
			desc += fmt.Sprintf(" (or set %s)", env)
		}
		if current := cfg.Providers[name].APIKey; current != "" {
			desc = fmt.Sprintf("Currently: %s. %s", maskKey(current), desc)
		}
		fields = append(fields, huh.NewInput().
			Title(providerDisplayName(name)+" API key").
			Description(desc).
			EchoMode(huh.EchoModePassword).
			Validate(validateAPIKey(name)).
			Value(&keys[i]))
	}

	form := huh.NewForm(huh.NewGroup(fields...)).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	for i, name := range names {
		if key := strings.TrimSpace(keys[i]); key != "" {
			cfg.Providers[name] = config.ProviderConfig{APIKey: key}
		}
	}
	return nil
}

func editTranscription(cfg *config.Config) error {
	selectedProvider := cfg.Transcription.Provider
	providerForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Speech Recognition Provider").
				Description(fmt.Sprintf("Currently: %s/%s", cfg.Transcription.Provider, cfg.Transcription.Model)).
				Options(recognitionProviderOptions()...).
				Value(&selectedProvider),
		),
	).WithTheme(getTheme())

	if err := providerForm.Run(); err != nil {
		return err
	}

	selectedModel := cfg.Transcription.Model
	if selectedProvider != cfg.Transcription.Provider {
		p, _ := provider.Get(selectedProvider)
		selectedModel = p.DefaultRecognitionModel()
	}
	lang := cfg.Transcription.Language
	chunk := formatFloat(cfg.Transcription.ChunkSeconds)

	modelForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Recognition Model").
				Options(recognitionModelOptions(selectedProvider)...).
				Value(&selectedModel),
			huh.NewSelect[string]().
				Title("Spoken Language").
				Description("Auto-detect lets the recognizer pick the language per chunk").
				Options(sourceLanguageOptions()...).
				Value(&lang),
			huh.NewInput().
				Title("Chunk Length (seconds)").
				Description("Audio is sent to the recognizer in windows of this length").
				Validate(validatePositiveFloat).
				Value(&chunk),
		),
	).WithTheme(getTheme())

	if err := modelForm.Run(); err != nil {
		return err
	}

	cfg.Transcription.Provider = selectedProvider
	cfg.Transcription.Model = selectedModel
	cfg.Transcription.Language = lang
	cfg.Transcription.ChunkSeconds, _ = strconv.ParseFloat(strings.TrimSpace(chunk), 64)
	return nil
}

func editTranslation(cfg *config.Config) error {
	enabled := cfg.Translation.Enabled
	enableForm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Translate recognized text?").
				Description("When disabled, subtitles show the recognized text as is").
				Value(&enabled),
		),
	).WithTheme(getTheme())

	if err := enableForm.Run(); err != nil {
		return err
	}
	cfg.Translation.Enabled = enabled
	if !enabled {
		return nil
	}

	selectedProvider := cfg.Translation.Provider
	if selectedProvider == "" {
		selectedProvider = provider.ProviderOpenAI
	}
	providerForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Translation Provider").
				Options(translationProviderOptions()...).
				Value(&selectedProvider),
		),
	).WithTheme(getTheme())

	if err := providerForm.Run(); err != nil {
		return err
	}

	selectedModel := cfg.Translation.Model
	if selectedProvider != cfg.Translation.Provider || selectedModel == "" {
		p, _ := provider.Get(selectedProvider)
		selectedModel = p.DefaultTranslationModel()
	}
	target := cfg.Translation.Target

	modelForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Translation Model").
				Options(translationModelOptions(selectedProvider)...).
				Value(&selectedModel),
			huh.NewInput().
				Title("Target Language").
				Description("BCP-47 code, e.g. 'en' or 'pt-BR'").
				Placeholder("en").
				Validate(validateTarget).
				Value(&target),
		),
	).WithTheme(getTheme())

	if err := modelForm.Run(); err != nil {
		return err
	}

	cfg.Translation.Provider = selectedProvider
	cfg.Translation.Model = selectedModel
	cfg.Translation.Target = strings.TrimSpace(target)
	return nil
}

func editCaptions(cfg *config.Config) error {
	words := strconv.Itoa(cfg.Captions.WordsPerCue)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Words per Caption").
				Description("Each caption shows this many words of the transcript").
				Validate(validatePositiveInt).
				Value(&words),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Captions.WordsPerCue, _ = strconv.Atoi(strings.TrimSpace(words))
	return nil
}

func editRender(cfg *config.Config) error {
	font := cfg.Render.Font
	fontSize := strconv.Itoa(cfg.Render.FontSize)
	color := cfg.Render.FontColor
	boxHeight := strconv.Itoa(cfg.Render.BoxHeight)
	codec := cfg.Render.VideoCodec

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Font").
				Description(fmt.Sprintf("fontconfig family; falls back to %s when missing", cfg.Render.FallbackFont)).
				Placeholder(cfg.Render.FallbackFont).
				Value(&font),
			huh.NewInput().
				Title("Font Size").
				Validate(validatePositiveInt).
				Value(&fontSize),
			huh.NewInput().
				Title("Font Color").
				Description("ffmpeg color name or 0xRRGGBB").
				Value(&color),
			huh.NewInput().
				Title("Caption Box Height (px)").
				Description("Height of the band at the bottom of the frame").
				Validate(validatePositiveInt).
				Value(&boxHeight),
			huh.NewSelect[string]().
				Title("Video Codec").
				Options(
					huh.NewOption("H.264 (libx264)", "libx264"),
					huh.NewOption("H.265 (libx265)", "libx265"),
					huh.NewOption("VP9 (libvpx-vp9)", "libvpx-vp9"),
				).
				Value(&codec),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Render.Font = strings.TrimSpace(font)
	cfg.Render.FontSize, _ = strconv.Atoi(strings.TrimSpace(fontSize))
	cfg.Render.FontColor = strings.TrimSpace(color)
	cfg.Render.BoxHeight, _ = strconv.Atoi(strings.TrimSpace(boxHeight))
	cfg.Render.VideoCodec = codec

	fmt.Println(StyleCaption.Render("the quick brown fox jumps over"))
	return nil
}

func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	notifType := cfg.Notifications.Type
	if notifType == "" || notifType == "none" {
		notifType = "desktop"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable notifications?").
				Description("Notify when a video is subtitled or a job fails").
				Value(&enabled),
			huh.NewSelect[string]().
				Title("Notification Type").
				Options(
					huh.NewOption("Desktop notifications (notify-send)", "desktop"),
					huh.NewOption("Log to console only", "log"),
				).
				Value(&notifType),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	cfg.Notifications.Type = notifType
	return nil
}
