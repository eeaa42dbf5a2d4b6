// Package analyzers implements the signal processing behind sample browsing:
// waveform peak envelopes, spectral band coloring, tempo estimation and the
// trailing-silence heuristic used to tell one-shots from loops.
//
// Every exported function is a pure function of its inputs. Buffers are
// never mutated and no state survives between calls, so callers may run
// analyses for different files concurrently without coordination.
package analyzers
