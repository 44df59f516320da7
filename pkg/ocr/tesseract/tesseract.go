// Package tesseract provides an ocr.Engine implementation backed by the
// Tesseract library through gosseract. It is configured for MRZ bands: the
// OCR-B trained model, single-block page segmentation and a whitelist of the
// OCR-B character set.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"mrzreader/pkg/ocr"
	"mrzreader/pkg/serrors"

	"github.com/otiai10/gosseract/v2"
)

// Options configure the engine. Language must name a trained model whose
// glyphs cover the OCR-B set; the stock "eng" model misreads fillers badly.
type Options struct {
	// Language is the Tesseract trained-model identifier, e.g. "ocrb".
	Language string
	// TessdataPrefix overrides the tessdata directory when non-empty.
	TessdataPrefix string
}

// Engine recognizes MRZ text via Tesseract. It is safe for concurrent use;
// every Recognize call creates its own gosseract client.
type Engine struct {
	opts          Options
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed OCR engine.
func New(opts Options) *Engine {
	return &Engine{opts: opts, clientFactory: gosseract.NewClient}
}

// Name identifies the engine for logging.
func (e *Engine) Name() string { return "tesseract" }

// Ensure Engine conforms to the ocr interfaces at compile time.
var (
	_ ocr.Engine = (*Engine)(nil)
	_ ocr.Prober = (*Engine)(nil)
)

type recognized struct {
	text  string
	boxes []gosseract.BoundingBox
	err   error
}

// Recognize runs Tesseract over the image and returns the recognized lines
// with per-line confidence. Recognition runs on its own goroutine so the
// caller-supplied deadline is honored even though the underlying call blocks;
// on timeout the abandoned goroutine still closes its client when Tesseract
// returns.
func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]ocr.Line, error) {
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	ch := make(chan recognized, 1)
	go func() {
		ch <- e.recognize(data)
	}()

	select {
	case <-ctx.Done():
		return nil, serrors.Wrap(serrors.ErrTimeout, ctx.Err(), "recognition did not finish in time")
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}

		return toLines(res.text, res.boxes), nil
	}
}

// recognize performs the blocking gosseract calls.
func (e *Engine) recognize(png []byte) recognized {
	c := e.clientFactory()
	defer c.Close()

	if err := e.configure(c); err != nil {
		return recognized{err: err}
	}
	if err := c.SetImageFromBytes(png); err != nil {
		return recognized{err: fmt.Errorf("could not set image: %w", err)}
	}

	text, err := c.Text()
	if err != nil {
		return recognized{err: fmt.Errorf("could not recognize text: %w", err)}
	}

	// line-level confidence; an error here only loses confidence reporting
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		boxes = nil
	}

	return recognized{text: text, boxes: boxes}
}

func (e *Engine) configure(c *gosseract.Client) error {
	if e.opts.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.opts.TessdataPrefix); err != nil {
			return fmt.Errorf("could not set tessdata prefix: %w", err)
		}
	}
	if err := c.SetLanguage(e.opts.Language); err != nil {
		return fmt.Errorf("could not set language %q: %w", e.opts.Language, err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return fmt.Errorf("could not set page segmentation mode: %w", err)
	}
	if err := c.SetWhitelist(ocr.CharsetMRZ); err != nil {
		return fmt.Errorf("could not set whitelist: %w", err)
	}

	return nil
}

// Probe verifies the trained model can be loaded by recognizing a small blank
// image. It is meant to run once at startup: a failing probe means the OCR-B
// model is not deployed, which must abort service start rather than surface as
// per-request errors.
func (e *Engine) Probe(ctx context.Context) error {
	blank := image.NewGray(image.Rect(0, 0, 64, 16))
	for i := range blank.Pix {
		blank.Pix[i] = 0xff
	}

	if _, err := e.Recognize(ctx, blank); err != nil {
		return serrors.Wrap(serrors.ErrModelMissing, err,
			"trained model %q is not usable", e.opts.Language)
	}

	return nil
}

// toLines pairs the recognized text lines with Tesseract's line-level
// confidences. Boxes follow reading order, matching the newline-split text;
// when they are missing or misaligned the affected lines fall back to the
// uniform default confidence.
func toLines(text string, boxes []gosseract.BoundingBox) []ocr.Line {
	var lines []ocr.Line
	i := 0
	for _, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if i < len(boxes) {
			lines = append(lines, ocr.Uniform(trimmed, boxes[i].Confidence/100.0, true))
		} else {
			lines = append(lines, ocr.Uniform(trimmed, ocr.DefaultConfidence, false))
		}
		i++
	}

	return lines
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("could not encode image: %w", err)
	}

	return buf.Bytes(), nil
}
