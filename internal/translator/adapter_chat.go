package translator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ChatAdapter implements Translator with OpenAI-compatible chat
// completions (OpenAI, Groq).
type ChatAdapter struct {
	name   string
	client *openai.Client
	config Config
}

// NewChatAdapter creates a chat-completions translator
func NewChatAdapter(name string, cfg Config) *ChatAdapter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &ChatAdapter{
		name:   name,
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

func (a *ChatAdapter) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	req := openai.ChatCompletionRequest{
		Model: a.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildSystemPrompt(source, target)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2, // low temperature for faithful translation
	}

	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("%s-translator: API call failed after %v: %v", a.name, duration, err)
		return "", fmt.Errorf("%s chat completion: %w", a.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s chat completion: no response choices", a.name)
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Printf("%s-translator: translated in %v: %q -> %q", a.name, duration, text, result)
	return result, nil
}
