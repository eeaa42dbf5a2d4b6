package pcm

import (
	"errors"
	"io"
	"os"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC files frame by frame
type FLACDecoder struct {
	logger logging.Logger
}

// NewFLACDecoder creates a new FLAC decoder
func NewFLACDecoder() *FLACDecoder {
	return &FLACDecoder{
		logger: logging.WithFields(logging.Fields{
			"component": "flac_decoder",
		}),
	}
}

// Decode parses frames until the end of the stream or the cap
func (d *FLACDecoder) Decode(path string, maxSeconds float64) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewDecodeError(FormatFLAC, path, ErrCodeOpen, "failed to open FLAC file", err)
	}
	defer f.Close()

	stream, err := flac.New(f)
	if err != nil {
		return nil, NewDecodeError(FormatFLAC, path, ErrCodeInvalidFormat, "failed to decode FLAC", err)
	}

	info := flacInfo(stream, path)
	if info.SampleRate <= 0 || info.Channels <= 0 || info.BitDepth <= 0 {
		return nil, NewDecodeError(FormatFLAC, path, ErrCodeInvalidFormat, "invalid FLAC stream info", nil)
	}

	scale := float64(int64(1) << (info.BitDepth - 1))
	mixer := newMonoMixer(info.Channels, info.SampleRate, maxSeconds, int(stream.Info.NSamples))

	partial := false
	for !mixer.full() {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if len(mixer.samples) == 0 {
				return nil, NewDecodeError(FormatFLAC, path, ErrCodeDecoding, "failed to parse FLAC frame", err)
			}
			d.logger.Warn("FLAC decode stopped early, keeping decoded audio", logging.Fields{
				"path":   path,
				"frames": len(mixer.samples),
				"error":  err.Error(),
			})
			partial = true
			break
		}

		channels := min(len(frame.Subframes), info.Channels)
		for i := range int(frame.BlockSize) {
			sum := 0.0
			for ch := range channels {
				sum += float64(frame.Subframes[ch].Samples[i]) / scale
			}
			if !mixer.addFrame(sum) {
				break
			}
		}
	}

	if len(mixer.samples) == 0 && stream.Info.NSamples > 0 {
		return nil, NewDecodeError(FormatFLAC, path, ErrCodeDecoding, "no audio frames decoded", nil)
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
		Format:     FormatFLAC,
		Path:       path,
		Truncated:  mixer.full(),
		Partial:    partial,
	}, nil
}

// Probe reads only the STREAMINFO block
func (d *FLACDecoder) Probe(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewDecodeError(FormatFLAC, path, ErrCodeOpen, "failed to open FLAC file", err)
	}
	defer f.Close()

	stream, err := flac.New(f)
	if err != nil {
		return nil, NewDecodeError(FormatFLAC, path, ErrCodeProbe, "failed to read FLAC stream info", err)
	}

	return flacInfo(stream, path), nil
}

func flacInfo(stream *flac.Stream, path string) *Info {
	info := &Info{
		Path:       path,
		Format:     FormatFLAC,
		SampleRate: int(stream.Info.SampleRate),
		Channels:   int(stream.Info.NChannels),
		BitDepth:   int(stream.Info.BitsPerSample),
	}
	if stream.Info.NSamples > 0 && info.SampleRate > 0 {
		info.Duration = framesToDuration(int(stream.Info.NSamples), info.SampleRate)
	}
	return info
}
