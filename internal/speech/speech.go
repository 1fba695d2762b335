// Package speech turns captured audio into text. The production engine is
// Deepgram's prerecorded API; a mock engine backs tests and keyless dev runs.
package speech

import "context"

// Transcriber converts a complete audio buffer into a transcript. An empty
// string with a nil error means the engine heard nothing usable.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
