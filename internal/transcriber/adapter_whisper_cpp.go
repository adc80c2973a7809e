package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leonardotrapani/burnsub/internal/media"
)

// WhisperCppAdapter implements Recognizer for local whisper-cpp transcription
type WhisperCppAdapter struct {
	modelPath string
	language  string
	threads   int
	binary    string
}

// NewWhisperCppAdapter creates a new whisper-cpp adapter
// modelPath: full path to the ggml model file
// lang: whisper-cpp language code ("" for auto)
// threads: number of CPU threads (0 for whisper-cli's default)
func NewWhisperCppAdapter(modelPath, lang string, threads int) *WhisperCppAdapter {
	return &WhisperCppAdapter{
		modelPath: modelPath,
		language:  lang,
		threads:   threads,
		binary:    "whisper-cli",
	}
}

func (a *WhisperCppAdapter) Recognize(ctx context.Context, chunk Chunk) (string, error) {
	if len(chunk.PCM) == 0 {
		return "", ErrUnintelligible
	}

	// a missing model or binary fails every chunk the same way
	if _, err := os.Stat(a.modelPath); os.IsNotExist(err) {
		return "", NewServiceError(StageRecognize, fmt.Errorf("model file not found: %s", a.modelPath))
	}
	whisperPath, err := exec.LookPath(a.binary)
	if err != nil {
		return "", NewServiceError(StageRecognize, fmt.Errorf("%s not found: install whisper.cpp first", a.binary))
	}

	format := chunk.Format
	if format.SampleRate == 0 {
		format = media.SpeechFormat
	}

	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("burnsub-chunk-%s.wav", uuid.NewString()))
	if err := os.WriteFile(tmpFile, media.EncodeWAV(chunk.PCM, format), 0600); err != nil {
		return "", NewServiceError(StageRecognize, fmt.Errorf("write temp file: %w", err))
	}
	defer os.Remove(tmpFile)

	cmd := exec.CommandContext(ctx, whisperPath, a.buildArgs(tmpFile)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return "", NewServiceError(StageRecognize, ctx.Err())
		}
		log.Printf("whisper-cpp: command failed after %v: %v\nstderr: %s", duration, err, stderr.String())
		return "", NewServiceError(StageRecognize, fmt.Errorf("whisper-cli failed: %w", err))
	}

	text := stripNonSpeech(stdout.String())
	log.Printf("whisper-cpp: transcribed %d bytes in %v: %q", len(chunk.PCM), duration, text)
	if text == "" {
		return "", ErrUnintelligible
	}
	return text, nil
}

func (a *WhisperCppAdapter) buildArgs(wavPath string) []string {
	lang := a.language
	if lang == "" {
		lang = "auto"
	}

	args := []string{
		"-m", a.modelPath,
		"-l", lang,
		"-nt", // no timestamps
		"-np", // no progress
		"-f", wavPath,
	}
	if a.threads > 0 {
		args = append(args, "-t", strconv.Itoa(a.threads))
	}
	return args
}

// annotations whisper emits for non-speech audio, e.g. [BLANK_AUDIO], (music)
var nonSpeechPattern = regexp.MustCompile(`[\[(][^\])]*[\])]`)

func stripNonSpeech(output string) string {
	var kept []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(nonSpeechPattern.ReplaceAllString(line, ""))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}
