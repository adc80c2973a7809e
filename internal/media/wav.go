package media

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Format describes uncompressed PCM audio.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// SpeechFormat is what the extractor produces and the recognizers expect:
// mono, 16 kHz, 16-bit signed little-endian.
var SpeechFormat = Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}

// BlockAlign returns the size of one sample frame in bytes.
func (f Format) BlockAlign() int {
	return f.Channels * f.BitsPerSample / 8
}

// ByteRate returns the number of PCM bytes per second.
func (f Format) ByteRate() int {
	return f.SampleRate * f.BlockAlign()
}

// BytesFor returns the frame-aligned byte count covering seconds of audio.
func (f Format) BytesFor(seconds float64) int64 {
	if seconds <= 0 {
		return 0
	}
	frames := int64(math.Round(seconds * float64(f.SampleRate)))
	return frames * int64(f.BlockAlign())
}

// Seconds returns the duration of n PCM bytes.
func (f Format) Seconds(n int64) float64 {
	rate := f.ByteRate()
	if rate <= 0 {
		return 0
	}
	return float64(n) / float64(rate)
}

var ErrNotWAV = errors.New("not a RIFF/WAVE file")

// EncodeWAV wraps raw PCM in a canonical 44-byte WAV header.
func EncodeWAV(pcm []byte, f Format) []byte {
	var buf bytes.Buffer

	dataSize := len(pcm)
	fileSize := 36 + dataSize

	// WAV header
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(fileSize))
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))              // fmt chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))               // PCM format
	binary.Write(&buf, binary.LittleEndian, uint16(f.Channels))      // number of channels
	binary.Write(&buf, binary.LittleEndian, uint32(f.SampleRate))    // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(f.ByteRate()))    // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(f.BlockAlign()))  // block align
	binary.Write(&buf, binary.LittleEndian, uint16(f.BitsPerSample)) // bits per sample

	// data chunk
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(pcm)

	return buf.Bytes()
}

// WAVReader reads the PCM payload of a WAV file window by window.
type WAVReader struct {
	file     *os.File
	data     *io.SectionReader
	format   Format
	dataSize int64
}

// OpenWAV opens path and positions the reader at the start of the data chunk.
func OpenWAV(path string) (*WAVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}

	format, offset, size, err := parseWAVHeader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("parse wav %s: %w", path, err)
	}

	return &WAVReader{
		file:     f,
		data:     io.NewSectionReader(f, offset, size),
		format:   format,
		dataSize: size,
	}, nil
}

// Format returns the PCM format of the file.
func (r *WAVReader) Format() Format {
	return r.format
}

// Duration returns the total duration of the PCM payload in seconds.
func (r *WAVReader) Duration() float64 {
	return r.format.Seconds(r.dataSize)
}

// Record returns the next seconds of PCM. At the end of the data it returns
// whatever is left, and an empty slice once the stream is exhausted.
func (r *WAVReader) Record(seconds float64) ([]byte, error) {
	want := r.format.BytesFor(seconds)
	if want == 0 {
		return nil, nil
	}

	buf := make([]byte, want)
	n, err := io.ReadFull(r.data, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	return buf[:n], nil
}

// Close closes the underlying file.
func (r *WAVReader) Close() error {
	return r.file.Close()
}

func parseWAVHeader(rs io.ReadSeeker) (Format, int64, int64, error) {
	var riff [12]byte
	if _, err := io.ReadFull(rs, riff[:]); err != nil {
		return Format{}, 0, 0, ErrNotWAV
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Format{}, 0, 0, ErrNotWAV
	}

	var (
		format    Format
		haveFmt   bool
		offset    int64 = 12
		chunkHead [8]byte
	)
	for {
		if _, err := io.ReadFull(rs, chunkHead[:]); err != nil {
			return Format{}, 0, 0, fmt.Errorf("missing data chunk: %w", err)
		}
		offset += 8
		id := string(chunkHead[0:4])
		size := int64(binary.LittleEndian.Uint32(chunkHead[4:8]))

		switch id {
		case "fmt ":
			if size < 16 {
				return Format{}, 0, 0, fmt.Errorf("fmt chunk too short: %d", size)
			}
			var fmtChunk [16]byte
			if _, err := io.ReadFull(rs, fmtChunk[:]); err != nil {
				return Format{}, 0, 0, fmt.Errorf("read fmt chunk: %w", err)
			}
			if audioFormat := binary.LittleEndian.Uint16(fmtChunk[0:2]); audioFormat != 1 {
				return Format{}, 0, 0, fmt.Errorf("unsupported wav encoding %d (want PCM)", audioFormat)
			}
			format = Format{
				Channels:      int(binary.LittleEndian.Uint16(fmtChunk[2:4])),
				SampleRate:    int(binary.LittleEndian.Uint32(fmtChunk[4:8])),
				BitsPerSample: int(binary.LittleEndian.Uint16(fmtChunk[14:16])),
			}
			haveFmt = true
			if _, err := rs.Seek(size-16+size%2, io.SeekCurrent); err != nil {
				return Format{}, 0, 0, err
			}
		case "data":
			if !haveFmt {
				return Format{}, 0, 0, errors.New("data chunk before fmt chunk")
			}
			if format.BlockAlign() <= 0 {
				return Format{}, 0, 0, fmt.Errorf("invalid pcm format %+v", format)
			}
			return format, offset, size, nil
		default:
			// LIST and other metadata chunks are padded to even sizes
			if _, err := rs.Seek(size+size%2, io.SeekCurrent); err != nil {
				return Format{}, 0, 0, err
			}
		}
		offset += size + size%2
	}
}
