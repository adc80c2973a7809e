package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Stream is a sequential reader over decoded PCM audio.
type Stream interface {
	Record(seconds float64) ([]byte, error)
	Format() Format
	Close() error
}

// AudioFile is a temporary decoded-audio artifact on disk. Whoever holds it
// is responsible for calling Release exactly once.
type AudioFile struct {
	Path     string
	Length   float64 // seconds
	PCM      Format
	released bool
}

// NewAudioFile inspects an existing WAV file and records its duration.
func NewAudioFile(path string) (*AudioFile, error) {
	r, err := OpenWAV(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return &AudioFile{Path: path, Length: r.Duration(), PCM: r.Format()}, nil
}

// Duration returns the total audio duration in seconds.
func (a *AudioFile) Duration() float64 {
	return a.Length
}

// Open returns a fresh stream positioned at the start of the audio.
func (a *AudioFile) Open() (Stream, error) {
	if a.released {
		return nil, fmt.Errorf("audio %s already released", a.Path)
	}
	return OpenWAV(a.Path)
}

// Release deletes the file. A file that is already gone is not an error.
func (a *AudioFile) Release() error {
	a.released = true
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove temp audio %s: %w", a.Path, err)
	}
	return nil
}
