package transcriber

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/leonardotrapani/burnsub/internal/media"
	"github.com/sashabaranov/go-openai"
)

// OpenAIAdapter implements Recognizer for OpenAI-compatible Whisper
// endpoints (OpenAI, Groq).
type OpenAIAdapter struct {
	name   string
	client *openai.Client
	config Config
}

func NewOpenAIAdapter(name string, config Config) *OpenAIAdapter {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIAdapter{
		name:   name,
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

func (a *OpenAIAdapter) Recognize(ctx context.Context, chunk Chunk) (string, error) {
	if len(chunk.PCM) == 0 {
		return "", ErrUnintelligible
	}

	format := chunk.Format
	if format.SampleRate == 0 {
		format = media.SpeechFormat
	}

	// Language left empty lets Whisper detect the spoken language
	req := openai.AudioRequest{
		Model:    a.config.Model,
		Reader:   bytes.NewReader(media.EncodeWAV(chunk.PCM, format)),
		FilePath: fmt.Sprintf("chunk-%04d.wav", chunk.Index),
		Language: a.config.Language,
	}

	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		if isUnintelligibleAPIError(err) {
			log.Printf("%s-adapter: chunk %d rejected after %v: %v", a.name, chunk.Index, duration, err)
			return "", fmt.Errorf("%w: %v", ErrUnintelligible, err)
		}
		log.Printf("%s-adapter: API call failed after %v: %v", a.name, duration, err)
		return "", NewServiceError(StageRecognize, fmt.Errorf("%s transcription: %w", a.name, err))
	}

	text := strings.TrimSpace(resp.Text)
	log.Printf("%s-adapter: transcribed %d bytes in %v: %q", a.name, len(chunk.PCM), duration, text)
	if text == "" {
		return "", ErrUnintelligible
	}
	return text, nil
}

// isUnintelligibleAPIError spots 400 responses that reject the audio
// itself rather than the request or the account.
func isUnintelligibleAPIError(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "too short") ||
		strings.Contains(msg, "could not be decoded") ||
		strings.Contains(msg, "no speech")
}
