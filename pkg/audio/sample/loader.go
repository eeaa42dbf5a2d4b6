package sample

import (
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/pcm"
)

// audioLoader decodes a file at most once per cap for a single analysis. A
// full decode, once done, also serves capped requests by slicing its prefix.
type audioLoader struct {
	source  Source
	path    string
	whole   *pcm.Buffer
	partial map[float64]*pcm.Buffer
}

func newAudioLoader(source Source, path string) *audioLoader {
	return &audioLoader{
		source:  source,
		path:    path,
		partial: make(map[float64]*pcm.Buffer),
	}
}

func (l *audioLoader) full() (*pcm.Buffer, error) {
	if l.whole != nil {
		return l.whole, nil
	}
	buf, err := l.source.Decode(l.path, 0)
	if err != nil {
		return nil, err
	}
	l.whole = buf
	return buf, nil
}

func (l *audioLoader) capped(maxSeconds float64) (*pcm.Buffer, error) {
	if maxSeconds <= 0 {
		return l.full()
	}
	if l.whole != nil {
		return prefix(l.whole, maxSeconds), nil
	}
	if buf, ok := l.partial[maxSeconds]; ok {
		return buf, nil
	}
	buf, err := l.source.Decode(l.path, maxSeconds)
	if err != nil {
		return nil, err
	}
	l.partial[maxSeconds] = buf
	return buf, nil
}

// prefix returns a view of the first maxSeconds of buf without copying.
func prefix(buf *pcm.Buffer, maxSeconds float64) *pcm.Buffer {
	limit := max(int(maxSeconds*float64(buf.SampleRate)), 1)
	if len(buf.Samples) <= limit {
		return buf
	}
	view := *buf
	view.Samples = buf.Samples[:limit:limit]
	view.Truncated = true
	return &view
}
