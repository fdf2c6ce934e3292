package providers

import "context"

// TranscriptUnavailable is the bracketed placeholder used when transcription
// degrades. It flows into the audit as source content, never as evidence.
const TranscriptUnavailable = "[transcript unavailable]"

// Transcriber converts audio bytes to plain text. Real implementations live
// outside this module; the pipeline only depends on this boundary.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// NoopTranscriber is the built-in degraded implementation: it always reports
// the transcript as unavailable without failing.
type NoopTranscriber struct{}

// Transcribe implements Transcriber.
func (NoopTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return TranscriptUnavailable, nil
}
