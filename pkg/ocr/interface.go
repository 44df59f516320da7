// Package ocr defines the narrow interface through which the MRZ pipeline
// talks to an optical character recognition engine, together with the data
// types crossing that boundary. Any concrete engine is a swappable
// implementation behind Engine, which enables deterministic, engine-free
// testing via scripted stand-ins that return fixed line sequences.
package ocr

import (
	"context"
	"image"
)

// CharsetMRZ is the full OCR-B character set permitted in a machine-readable
// zone: digits, uppercase A-Z and the filler symbol.
const CharsetMRZ = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ<"

// Filler is the padding/separator character used within MRZ fields.
const Filler = '<'

// DefaultConfidence is assigned per character when the engine cannot report
// confidences; lines carrying it have EngineReported set to false so the
// trust scoring can discount them.
const DefaultConfidence = 0.5

// Line is a single recognized text line from one image region.
type Line struct {
	// Text is the recognized character sequence, whitespace-trimmed.
	Text string
	// CharConfidence holds one confidence value in [0,1] per rune of Text.
	// Its length always equals the rune count of Text.
	CharConfidence []float64
	// Confidence is the engine's line-level confidence in [0,1].
	Confidence float64
	// EngineReported is false when the engine could not supply confidences and
	// DefaultConfidence was assigned instead.
	EngineReported bool
}

// Uniform constructs a Line whose per-character confidences are all set to the
// given value. Used by engines without character-level reporting and by
// scripted test engines.
func Uniform(text string, confidence float64, engineReported bool) Line {
	runes := []rune(text)
	conf := make([]float64, len(runes))
	for i := range conf {
		conf[i] = confidence
	}

	return Line{
		Text:           text,
		CharConfidence: conf,
		Confidence:     confidence,
		EngineReported: engineReported,
	}
}

// Engine is the abstraction over the external recognizer. Implementations must
// honor ctx cancellation: a deadline exceeded mid-recognition returns
// ctx.Err() (possibly wrapped), never a partial result.
type Engine interface {
	// Name identifies the engine for logging.
	Name() string
	// Recognize runs recognition over the given image, constrained to
	// CharsetMRZ, and returns the recognized lines in top-to-bottom order.
	Recognize(ctx context.Context, img image.Image) ([]Line, error)
}

// Prober is implemented by engines that can verify their configuration
// (trained model availability) ahead of serving traffic.
type Prober interface {
	// Probe performs a cheap end-to-end recognition to confirm the engine is
	// usable. A failure indicates a deployment-level misconfiguration.
	Probe(ctx context.Context) error
}
