package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// VideoInfo is the subset of container metadata the pipeline needs.
type VideoInfo struct {
	Path          string
	Duration      float64 // container duration, seconds
	Width         int
	Height        int
	HasAudio      bool
	AudioDuration float64
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// Probe runs ffprobe against path and extracts duration, frame size and
// audio presence.
func Probe(ctx context.Context, binary, path string) (VideoInfo, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return VideoInfo{}, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(output)))
	}

	info, err := parseProbe(output)
	if err != nil {
		return VideoInfo{}, err
	}
	info.Path = path
	return info, nil
}

func parseProbe(output []byte) (VideoInfo, error) {
	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	info := VideoInfo{Duration: parseSeconds(result.Format.Duration)}
	videoFound := false
	for _, s := range result.Streams {
		switch strings.ToLower(s.CodecType) {
		case "video":
			if videoFound {
				continue
			}
			videoFound = true
			info.Width = s.Width
			info.Height = s.Height
			if info.Duration == 0 {
				info.Duration = parseSeconds(s.Duration)
			}
		case "audio":
			if info.HasAudio {
				continue
			}
			info.HasAudio = true
			info.AudioDuration = parseSeconds(s.Duration)
		}
	}

	if !videoFound {
		return VideoInfo{}, errors.New("ffprobe: no video stream")
	}
	return info, nil
}

func parseSeconds(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || parsed < 0 {
		return 0
	}
	return parsed
}
