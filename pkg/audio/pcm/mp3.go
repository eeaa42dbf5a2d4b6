package pcm

import (
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces interleaved 16-bit little-endian stereo
const (
	mp3Channels   = 2
	mp3FrameBytes = 4
)

// MP3Decoder decodes MPEG-1/2 layer III files
type MP3Decoder struct {
	chunkFrames int
	logger      logging.Logger
}

// NewMP3Decoder creates a new MP3 decoder
func NewMP3Decoder() *MP3Decoder {
	return &MP3Decoder{
		chunkFrames: defaultChunkFrames,
		logger: logging.WithFields(logging.Fields{
			"component": "mp3_decoder",
		}),
	}
}

// Decode mixes the decoder's stereo output down to mono
func (d *MP3Decoder) Decode(path string, maxSeconds float64) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewDecodeError(FormatMP3, path, ErrCodeOpen, "failed to open MP3 file", err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, NewDecodeError(FormatMP3, path, ErrCodeInvalidFormat, "failed to create mp3 decoder", err)
	}

	sampleRate := decoder.SampleRate()
	if sampleRate <= 0 {
		return nil, NewDecodeError(FormatMP3, path, ErrCodeInvalidFormat, "mp3 stream reports no sample rate", nil)
	}

	totalFrames := 0
	if length := decoder.Length(); length > 0 {
		totalFrames = int(length / mp3FrameBytes)
	}

	mixer := newMonoMixer(mp3Channels, sampleRate, maxSeconds, totalFrames)
	raw := make([]byte, d.chunkFrames*mp3FrameBytes)
	values := make([]int, d.chunkFrames*mp3Channels)

	partial := false
	for {
		n, err := io.ReadFull(decoder, raw)
		n -= n % mp3FrameBytes
		if n > 0 {
			count := n / 2
			for i := range count {
				values[i] = int(int16(binary.LittleEndian.Uint16(raw[i*2:])))
			}
			if !mixer.addInterleaved(values[:count], scaleInt16) {
				break
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			if len(mixer.samples) == 0 {
				return nil, NewDecodeError(FormatMP3, path, ErrCodeDecoding, "mp3 decode error", err)
			}
			d.logger.Warn("MP3 decode stopped early, keeping decoded audio", logging.Fields{
				"path":   path,
				"frames": len(mixer.samples),
				"error":  err.Error(),
			})
			partial = true
			break
		}
	}

	if len(mixer.samples) == 0 {
		return nil, NewDecodeError(FormatMP3, path, ErrCodeDecoding, "no audio frames decoded", nil)
	}

	duration := framesToDuration(totalFrames, sampleRate)
	if totalFrames == 0 {
		duration = framesToDuration(len(mixer.samples), sampleRate)
	}

	return &Buffer{
		Samples:    mixer.samples,
		SampleRate: sampleRate,
		Channels:   mp3Channels,
		Duration:   duration,
		Format:     FormatMP3,
		Path:       path,
		Truncated:  mixer.full(),
		Partial:    partial,
	}, nil
}

// Probe reads frame headers to compute the stream length
func (d *MP3Decoder) Probe(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewDecodeError(FormatMP3, path, ErrCodeOpen, "failed to open MP3 file", err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, NewDecodeError(FormatMP3, path, ErrCodeProbe, "failed to read mp3 headers", err)
	}

	info := &Info{
		Path:       path,
		Format:     FormatMP3,
		SampleRate: decoder.SampleRate(),
		Channels:   mp3Channels,
		BitDepth:   16,
	}
	if length := decoder.Length(); length > 0 && info.SampleRate > 0 {
		info.Duration = framesToDuration(int(length/mp3FrameBytes), info.SampleRate)
	}

	return info, nil
}

func scaleInt16(v int) float64 {
	return float64(v) / 32768.0
}
