package pcm

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Detector determines the container format of an audio file
type Detector struct{}

// NewDetector creates a new format detector
func NewDetector() *Detector {
	return &Detector{}
}

// DetectFormat resolves the format from the file extension, falling back to
// the file's leading bytes.
func (d *Detector) DetectFormat(path string) (Format, error) {
	// Extension-based detection
	if format := DetectFromExtension(path); format != FormatUnknown {
		return format, nil
	}

	// Fall back to magic bytes
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, NewDecodeError(FormatUnknown, path, ErrCodeOpen,
			"failed to open audio file", err)
	}
	defer f.Close()

	header := make([]byte, 12)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return FormatUnknown, NewDecodeError(FormatUnknown, path, ErrCodeInvalidFormat,
			"failed to read file header", err)
	}

	if format := DetectFromHeader(header[:n]); format != FormatUnknown {
		return format, nil
	}

	return FormatUnknown, NewDecodeError(FormatUnknown, path, ErrCodeUnsupported,
		"unable to determine audio format from extension or header", nil)
}

// DetectFromExtension maps a file extension to a format
func DetectFromExtension(path string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "wav", "wave":
		return FormatWAV
	case "mp3":
		return FormatMP3
	case "flac":
		return FormatFLAC
	case "aif", "aiff", "aifc":
		return FormatAIFF
	case "ogg", "oga":
		return FormatOGG
	default:
		return FormatUnknown
	}
}

// DetectFromHeader recognizes a format from the first bytes of a file
func DetectFromHeader(header []byte) Format {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(header, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(header, []byte("ID3")):
		return FormatMP3
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		return FormatMP3
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("FORM")) &&
		(bytes.Equal(header[8:12], []byte("AIFF")) || bytes.Equal(header[8:12], []byte("AIFC"))):
		return FormatAIFF
	case bytes.HasPrefix(header, []byte("OggS")):
		return FormatOGG
	default:
		return FormatUnknown
	}
}
