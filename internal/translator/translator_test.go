package translator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		want    string // type name
		wantErr string
	}{
		{name: "disabled", config: Config{Enabled: false}, want: "passthrough"},
		{name: "openai", config: Config{Enabled: true, Provider: "openai", APIKey: "sk-test"}, want: "chat"},
		{name: "groq", config: Config{Enabled: true, Provider: "groq", APIKey: "gsk_test"}, want: "chat"},
		{name: "missing key", config: Config{Enabled: true, Provider: "openai"}, wantErr: "API key required"},
		{name: "local provider", config: Config{Enabled: true, Provider: "whisper-cpp"}, wantErr: "does not support translation"},
		{name: "unknown provider", config: Config{Enabled: true, Provider: "deepl", APIKey: "x"}, wantErr: "unknown provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.config)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("New() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			switch tr.(type) {
			case Passthrough:
				if tt.want != "passthrough" {
					t.Errorf("got Passthrough, want %s", tt.want)
				}
			case *ChatAdapter:
				if tt.want != "chat" {
					t.Errorf("got ChatAdapter, want %s", tt.want)
				}
			default:
				t.Errorf("unexpected translator %T", tr)
			}
		})
	}
}

func TestNew_DefaultsModel(t *testing.T) {
	tr, err := New(Config{Enabled: true, Provider: "groq", APIKey: "gsk_test"})
	if err != nil {
		t.Fatal(err)
	}
	chat := tr.(*ChatAdapter)
	if chat.config.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Model = %s", chat.config.Model)
	}
	if chat.config.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("BaseURL = %s", chat.config.BaseURL)
	}
}

func TestPassthrough(t *testing.T) {
	got, err := Passthrough{}.Translate(context.Background(), "hola", "auto", "en")
	if err != nil || got != "hola" {
		t.Errorf("Translate() = %q, %v", got, err)
	}
}

func newTestChatAdapter(t *testing.T, handler http.HandlerFunc) *ChatAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewChatAdapter("openai", Config{
		Enabled:  true,
		Provider: "openai",
		APIKey:   "sk-test",
		BaseURL:  server.URL + "/v1",
		Model:    "gpt-4o-mini",
	})
}

func TestChatAdapter_Translate(t *testing.T) {
	var got openai.ChatCompletionRequest
	var path string

	adapter := newTestChatAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices": [{"index": 0, "message": {"role": "assistant", "content": " Hello, how are you? \n"}}]}`)
	})

	text, err := adapter.Translate(context.Background(), "Hola, ¿cómo estás?", "auto", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if text != "Hello, how are you?" {
		t.Errorf("text = %q", text)
	}
	if path != "/v1/chat/completions" {
		t.Errorf("path = %s", path)
	}
	if got.Model != "gpt-4o-mini" || len(got.Messages) != 2 {
		t.Fatalf("request = %+v", got)
	}
	if got.Messages[1].Content != "Hola, ¿cómo estás?" {
		t.Errorf("user message = %q", got.Messages[1].Content)
	}
	if !strings.Contains(got.Messages[0].Content, "into English (en)") {
		t.Errorf("system prompt = %q", got.Messages[0].Content)
	}
}

func TestChatAdapter_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		adapter := newTestChatAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"error": {"message": "Rate limit reached", "type": "requests"}}`)
		})
		if _, err := adapter.Translate(context.Background(), "hola", "auto", "en"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("no choices", func(t *testing.T) {
		adapter := newTestChatAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"choices": []}`)
		})
		_, err := adapter.Translate(context.Background(), "hola", "auto", "en")
		if err == nil || !strings.Contains(err.Error(), "no response choices") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("blank input skips the call", func(t *testing.T) {
		adapter := newTestChatAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("blank text should not reach the API")
		})
		if got, err := adapter.Translate(context.Background(), "  ", "auto", "en"); err != nil || got != "" {
			t.Errorf("Translate() = %q, %v", got, err)
		}
	})
}

func TestBuildSystemPrompt(t *testing.T) {
	tests := []struct {
		source, target string
		contains       []string
	}{
		{"auto", "en", []string{"from the detected language into English (en)", "already in English (en)"}},
		{"", "en", []string{"from the detected language"}},
		{"es", "en", []string{"from Spanish (es) into English (en)"}},
		{"en", "fr", []string{"into French (fr)"}},
	}

	for _, tt := range tests {
		prompt := BuildSystemPrompt(tt.source, tt.target)
		for _, want := range tt.contains {
			if !strings.Contains(prompt, want) {
				t.Errorf("BuildSystemPrompt(%q, %q) missing %q:\n%s", tt.source, tt.target, want, prompt)
			}
		}
	}
}
