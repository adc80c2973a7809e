package transcriber

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestWhisperCppAdapter_BuildArgs(t *testing.T) {
	tests := []struct {
		name     string
		language string
		threads  int
		want     string
	}{
		{"auto detect", "", 0, "-m /m/ggml-base.bin -l auto -nt -np -f /tmp/c.wav"},
		{"fixed language", "es", 0, "-m /m/ggml-base.bin -l es -nt -np -f /tmp/c.wav"},
		{"threads", "", 4, "-m /m/ggml-base.bin -l auto -nt -np -f /tmp/c.wav -t 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewWhisperCppAdapter("/m/ggml-base.bin", tt.language, tt.threads)
			got := strings.Join(a.buildArgs("/tmp/c.wav"), " ")
			if got != tt.want {
				t.Errorf("buildArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripNonSpeech(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{" Bonjour tout le monde.\n", "Bonjour tout le monde."},
		{"[BLANK_AUDIO]\n", ""},
		{" (music)\n Ciao a tutti.\n", "Ciao a tutti."},
		{" Uno\n dos [risas] tres\n", "Uno dos  tres"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := stripNonSpeech(tt.input); got != tt.want {
			t.Errorf("stripNonSpeech(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWhisperCppAdapter_MissingModelIsServiceError(t *testing.T) {
	a := NewWhisperCppAdapter(filepath.Join(t.TempDir(), "missing.bin"), "", 0)

	_, err := a.Recognize(context.Background(), testChunk())
	if !IsServiceError(err) {
		t.Errorf("error = %v, want ServiceError", err)
	}
}

func TestWhisperCppAdapter_EmptyChunk(t *testing.T) {
	a := NewWhisperCppAdapter("/nonexistent", "", 0)

	if _, err := a.Recognize(context.Background(), Chunk{}); !errors.Is(err, ErrUnintelligible) {
		t.Errorf("error = %v, want ErrUnintelligible", err)
	}
}
