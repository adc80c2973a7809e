package whisper

import (
	"os"
	"path/filepath"
)

// ModelInfo holds metadata for a whisper model
type ModelInfo struct {
	ID        string // model identifier (e.g., "base")
	Name      string // display name (e.g., "Base")
	Filename  string // file name (e.g., "ggml-base.bin")
	Size      string // human readable size
	SizeBytes int64  // size in bytes for progress tracking
}

// multilingual models from huggingface.co/ggerganov/whisper.cpp; the
// English-only variants cannot detect the source language
var models = []ModelInfo{
	{ID: "base", Name: "Base", Filename: "ggml-base.bin", Size: "142MB", SizeBytes: 142_000_000},
	{ID: "tiny", Name: "Tiny", Filename: "ggml-tiny.bin", Size: "75MB", SizeBytes: 75_000_000},
	{ID: "small", Name: "Small", Filename: "ggml-small.bin", Size: "466MB", SizeBytes: 466_000_000},
	{ID: "medium", Name: "Medium", Filename: "ggml-medium.bin", Size: "1.5GB", SizeBytes: 1_500_000_000},
	{ID: "large-v3", Name: "Large V3", Filename: "ggml-large-v3.bin", Size: "3GB", SizeBytes: 3_000_000_000},
}

var modelByID = func() map[string]ModelInfo {
	m := make(map[string]ModelInfo, len(models))
	for _, model := range models {
		m[model.ID] = model
	}
	return m
}()

const (
	// base URL for downloading models from huggingface
	DefaultBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

	// EnvModelsDir overrides the model directory
	EnvModelsDir = "BURNSUB_MODELS_DIR"
)

// GetModelsDir returns the directory where whisper models are stored.
func GetModelsDir() (string, error) {
	if dir := os.Getenv(EnvModelsDir); dir != "" {
		return dir, nil
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "burnsub", "models", "whisper"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "burnsub", "models", "whisper"), nil
}

// GetModel returns info for a model by ID.
// Returns nil if model ID is unknown.
func GetModel(modelID string) *ModelInfo {
	info, ok := modelByID[modelID]
	if !ok {
		return nil
	}
	return &info
}

// ListModels returns all available whisper models
func ListModels() []ModelInfo {
	result := make([]ModelInfo, len(models))
	copy(result, models)
	return result
}
