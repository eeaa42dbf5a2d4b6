package pcm

import (
	"fmt"
	"slices"
	"sync"
)

// Factory dispatches decoding to the decoder registered for a file's format
type Factory struct {
	decoders map[Format]func() Decoder
	detector *Detector
	mu       sync.RWMutex
}

// NewFactory creates a new decoder factory with the built-in decoders
func NewFactory() *Factory {
	f := &Factory{
		decoders: make(map[Format]func() Decoder),
		detector: NewDetector(),
	}

	// Register default decoders
	f.RegisterDecoderFactory(FormatWAV, func() Decoder {
		return NewWAVDecoder()
	})
	f.RegisterDecoderFactory(FormatMP3, func() Decoder {
		return NewMP3Decoder()
	})
	f.RegisterDecoderFactory(FormatFLAC, func() Decoder {
		return NewFLACDecoder()
	})

	return f
}

var defaultFactory = NewFactory()

// Decode decodes path with the default factory
func Decode(path string, maxSeconds float64) (*Buffer, error) {
	return defaultFactory.Decode(path, maxSeconds)
}

// Probe probes path with the default factory
func Probe(path string) (*Info, error) {
	return defaultFactory.Probe(path)
}

// CreateDecoder creates a decoder for the given format
func (f *Factory) CreateDecoder(format Format) (Decoder, error) {
	f.mu.RLock()
	decoderFactory, exists := f.decoders[format]
	f.mu.RUnlock()

	if !exists {
		return nil, NewDecodeError(
			format, "", ErrCodeUnsupported,
			fmt.Sprintf("unsupported audio format: %s", format),
			nil,
		)
	}

	return decoderFactory(), nil
}

// DetectAndCreate detects the file format and creates the matching decoder
func (f *Factory) DetectAndCreate(path string) (Decoder, Format, error) {
	format, err := f.detector.DetectFormat(path)
	if err != nil {
		return nil, format, err
	}

	decoder, err := f.CreateDecoder(format)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.Path = path
		}
		return nil, format, err
	}

	return decoder, format, nil
}

// Decode detects the format of path and decodes it to mono PCM
func (f *Factory) Decode(path string, maxSeconds float64) (*Buffer, error) {
	decoder, _, err := f.DetectAndCreate(path)
	if err != nil {
		return nil, err
	}
	return decoder.Decode(path, maxSeconds)
}

// Probe detects the format of path and reads its header
func (f *Factory) Probe(path string) (*Info, error) {
	decoder, _, err := f.DetectAndCreate(path)
	if err != nil {
		return nil, err
	}
	return decoder.Probe(path)
}

// RegisterDecoderFactory registers a decoder constructor for a format
func (f *Factory) RegisterDecoderFactory(format Format, factory func() Decoder) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.decoders[format] = factory
}

// SupportedFormats returns the formats that can be decoded, sorted by name
func (f *Factory) SupportedFormats() []Format {
	f.mu.RLock()
	defer f.mu.RUnlock()

	formats := make([]Format, 0, len(f.decoders))
	for format := range f.decoders {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}
