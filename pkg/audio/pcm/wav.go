package pcm

import (
	"fmt"
	"math"
	"os"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVE format tags
const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// defaultChunkFrames is the number of frames read per decoder call.
const defaultChunkFrames = 4096

// WAVDecoder decodes RIFF/WAVE files with integer or 32-bit float samples
type WAVDecoder struct {
	chunkFrames int
	logger      logging.Logger
}

// NewWAVDecoder creates a new WAV decoder
func NewWAVDecoder() *WAVDecoder {
	return &WAVDecoder{
		chunkFrames: defaultChunkFrames,
		logger: logging.WithFields(logging.Fields{
			"component": "wav_decoder",
		}),
	}
}

// Decode reads the file in chunks so a capped decode stops early
func (d *WAVDecoder) Decode(path string, maxSeconds float64) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewDecodeError(FormatWAV, path, ErrCodeOpen, "failed to open WAV file", err)
	}
	defer f.Close()

	decoder, info, err := d.readHeader(f, path)
	if err != nil {
		return nil, err
	}

	toFloat, err := wavSampleConverter(int(decoder.WavAudioFormat), info.BitDepth)
	if err != nil {
		return nil, NewDecodeError(FormatWAV, path, ErrCodeUnsupported, "unsupported WAV sample format", err)
	}

	totalFrames := 0
	if info.Duration > 0 {
		totalFrames = decoder.PCMSize / (info.Channels * info.BitDepth / 8)
	}

	mixer := newMonoMixer(info.Channels, info.SampleRate, maxSeconds, totalFrames)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: info.Channels,
			SampleRate:  info.SampleRate,
		},
		Data:           make([]int, d.chunkFrames*info.Channels),
		SourceBitDepth: info.BitDepth,
	}

	partial := false
	for {
		n, err := decoder.PCMBuffer(buf)
		if n > 0 && !mixer.addInterleaved(buf.Data[:n], toFloat) {
			break
		}
		if err != nil {
			if len(mixer.samples) == 0 {
				return nil, NewDecodeError(FormatWAV, path, ErrCodeDecoding, "failed to read PCM data", err)
			}
			d.logger.Warn("WAV decode stopped early, keeping decoded audio", logging.Fields{
				"path":    path,
				"frames":  len(mixer.samples),
				"error":   err.Error(),
				"decoder": "wav",
			})
			partial = true
			break
		}
		if n == 0 {
			break
		}
	}

	if len(mixer.samples) == 0 && totalFrames > 0 {
		return nil, NewDecodeError(FormatWAV, path, ErrCodeDecoding, "no PCM data decoded", nil)
	}

	duration := info.Duration
	if duration == 0 {
		duration = framesToDuration(len(mixer.samples), info.SampleRate)
	}

	return &Buffer{
		Samples:    mixer.samples,
		SampleRate: info.SampleRate,
		Channels:   info.Channels,
		Duration:   duration,
		Format:     FormatWAV,
		Path:       path,
		Truncated:  mixer.full(),
		Partial:    partial,
	}, nil
}

// Probe reads the WAV header and the PCM chunk size
func (d *WAVDecoder) Probe(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewDecodeError(FormatWAV, path, ErrCodeOpen, "failed to open WAV file", err)
	}
	defer f.Close()

	_, info, err := d.readHeader(f, path)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// readHeader validates the file and positions the decoder at the PCM data
func (d *WAVDecoder) readHeader(f *os.File, path string) (*wav.Decoder, *Info, error) {
	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, nil, NewDecodeError(FormatWAV, path, ErrCodeInvalidFormat, "invalid WAV file", decoder.Err())
	}

	if err := decoder.FwdToPCM(); err != nil {
		return nil, nil, NewDecodeError(FormatWAV, path, ErrCodeInvalidFormat, "missing PCM data chunk", err)
	}

	info := &Info{
		Path:       path,
		Format:     FormatWAV,
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
	}
	if info.SampleRate <= 0 || info.Channels <= 0 || info.BitDepth <= 0 {
		return nil, nil, NewDecodeError(FormatWAV, path, ErrCodeInvalidFormat,
			fmt.Sprintf("invalid WAV header: %d Hz, %d channels, %d bit",
				info.SampleRate, info.Channels, info.BitDepth), nil)
	}

	frameBytes := info.Channels * info.BitDepth / 8
	if decoder.PCMSize > 0 && frameBytes > 0 {
		info.Duration = framesToDuration(decoder.PCMSize/frameBytes, info.SampleRate)
	}

	d.logger.Debug("Read WAV header", logging.Fields{
		"path":        path,
		"sample_rate": info.SampleRate,
		"channels":    info.Channels,
		"bit_depth":   info.BitDepth,
		"duration":    info.Duration.Seconds(),
	})

	return decoder, info, nil
}

// wavSampleConverter returns the function scaling raw decoder values to [-1, 1]
func wavSampleConverter(audioFormat, bitDepth int) (func(int) float64, error) {
	switch audioFormat {
	case wavFormatPCM, wavFormatExtensible:
		switch bitDepth {
		case 8:
			// 8-bit WAV is unsigned
			return func(v int) float64 { return float64(v-128) / 128.0 }, nil
		case 16, 24, 32:
			scale := float64(int64(1) << (bitDepth - 1))
			return func(v int) float64 { return float64(v) / scale }, nil
		}
	case wavFormatFloat:
		if bitDepth == 32 {
			return func(v int) float64 {
				return float64(math.Float32frombits(uint32(int32(v))))
			}, nil
		}
	}
	return nil, fmt.Errorf("format tag %d with %d-bit samples", audioFormat, bitDepth)
}
