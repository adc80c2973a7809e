package media

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Extractor decodes a video's audio track into a temporary WAV file.
type Extractor struct {
	FFmpegPath string
	TempDir    string
	Format     Format
}

// NewExtractor returns an extractor producing SpeechFormat audio.
func NewExtractor(ffmpegPath, tempDir string) *Extractor {
	return &Extractor{FFmpegPath: ffmpegPath, TempDir: tempDir, Format: SpeechFormat}
}

// ExtractAudio writes the first audio stream of videoPath as PCM WAV and
// returns the artifact. The caller owns the returned file.
func (e *Extractor) ExtractAudio(ctx context.Context, videoPath string) (*AudioFile, error) {
	binary := e.FFmpegPath
	if binary == "" {
		binary = "ffmpeg"
	}
	tmpDir := e.TempDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	format := e.Format
	if format.SampleRate == 0 {
		format = SpeechFormat
	}

	out := filepath.Join(tmpDir, fmt.Sprintf("burnsub-%s.wav", uuid.NewString()))
	args := e.buildArgs(videoPath, out, format)

	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		_ = os.Remove(out)
		return nil, fmt.Errorf("ffmpeg extract audio: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	audio, err := NewAudioFile(out)
	if err != nil {
		_ = os.Remove(out)
		return nil, err
	}

	log.Printf("Media: extracted %.2fs of audio from %s in %v", audio.Duration(), filepath.Base(videoPath), time.Since(start))
	return audio, nil
}

func (e *Extractor) buildArgs(videoPath, out string, format Format) []string {
	return []string{
		"-y",
		"-v", "error",
		"-i", videoPath,
		"-vn",
		"-map", "0:a:0",
		"-ac", strconv.Itoa(format.Channels),
		"-ar", strconv.Itoa(format.SampleRate),
		"-acodec", "pcm_s" + strconv.Itoa(format.BitsPerSample) + "le",
		"-f", "wav",
		out,
	}
}
