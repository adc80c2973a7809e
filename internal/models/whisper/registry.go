package whisper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
)

// ProgressFunc is called during download with bytes downloaded and total
type ProgressFunc func(downloaded, total int64)

// Store manages model files in one directory.
type Store struct {
	Dir     string
	BaseURL string
	Client  *http.Client
}

// DefaultStore returns the store under GetModelsDir.
func DefaultStore() (*Store, error) {
	dir, err := GetModelsDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get models directory: %w", err)
	}
	return &Store{Dir: dir, BaseURL: DefaultBaseURL, Client: http.DefaultClient}, nil
}

// Path returns the full path to a model file, or "" for unknown IDs.
func (s *Store) Path(modelID string) string {
	info, ok := modelByID[modelID]
	if !ok {
		return ""
	}
	return filepath.Join(s.Dir, info.Filename)
}

// URL returns the download URL for a model, or "" for unknown IDs.
func (s *Store) URL(modelID string) string {
	info, ok := modelByID[modelID]
	if !ok {
		return ""
	}
	return s.BaseURL + "/" + info.Filename
}

// IsInstalled returns true if the model is downloaded and available
func (s *Store) IsInstalled(modelID string) bool {
	path := s.Path(modelID)
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// Installed returns IDs of all installed models
func (s *Store) Installed() []string {
	var installed []string
	for _, m := range models {
		if s.IsInstalled(m.ID) {
			installed = append(installed, m.ID)
		}
	}
	return installed
}

// InstalledPath returns the path to an installed model, or error if not installed
func (s *Store) InstalledPath(modelID string) (string, error) {
	if GetModel(modelID) == nil {
		return "", fmt.Errorf("unknown model: %s", modelID)
	}
	if !s.IsInstalled(modelID) {
		return "", fmt.Errorf("model not installed: %s (run burnsub model download %s)", modelID, modelID)
	}
	return s.Path(modelID), nil
}

// Download fetches a model. The file only appears under its final name
// once fully written. onProgress may be nil.
func (s *Store) Download(ctx context.Context, modelID string, onProgress ProgressFunc) error {
	info := GetModel(modelID)
	if info == nil {
		return fmt.Errorf("unknown model: %s", modelID)
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	destPath := s.Path(modelID)
	tempPath := destPath + ".downloading"

	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		out.Close()
		os.Remove(tempPath) // no-op after the rename
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(modelID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = info.SizeBytes
	}

	written, err := io.Copy(out, &progressReader{ctx: ctx, r: resp.Body, total: total, onProgress: onProgress})
	if err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tempPath, destPath); err != nil {
		return fmt.Errorf("failed to finalize download: %w", err)
	}

	log.Printf("Whisper: downloaded %s (%d bytes) to %s", modelID, written, destPath)
	return nil
}

// Remove deletes a downloaded model
func (s *Store) Remove(modelID string) error {
	if GetModel(modelID) == nil {
		return fmt.Errorf("unknown model: %s", modelID)
	}
	if !s.IsInstalled(modelID) {
		return fmt.Errorf("model not installed: %s", modelID)
	}
	if err := os.Remove(s.Path(modelID)); err != nil {
		return fmt.Errorf("failed to remove model: %w", err)
	}
	return nil
}

type progressReader struct {
	ctx        context.Context
	r          io.Reader
	read       int64
	total      int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.read, p.total)
		}
	}
	return n, err
}
