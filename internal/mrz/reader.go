package mrz

import (
	"context"
	"strings"
	"time"

	"mrzreader/internal/config"
	"mrzreader/pkg/domain"
	"mrzreader/pkg/logger"
	"mrzreader/pkg/metrics"
	"mrzreader/pkg/ocr"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// minLineLength filters recognizer output down to plausible MRZ lines; the
// shortest layout line is 30 characters, so anything under this is noise.
const minLineLength = 20

// Options configure the recognition pipeline. These settings are typically
// derived from application configuration.
type Options struct {
	// MaxBands is the maximum number of candidate bands recognized per image.
	MaxBands int
	// RecognizeTimeout bounds a single recognizer call on one band.
	RecognizeTimeout time.Duration
	// Parallelism limits concurrent recognizer calls per request.
	Parallelism int
	// MaxAge steers birth-date century inference, see ParseOptions.
	MaxAge int
	// MinFieldFraction is the unreadability cutoff, see AssembleOptions.
	MinFieldFraction float64
	// Now supplies the reference time for date decoding. Defaults to time.Now.
	Now func() time.Time
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxBands:         cfg.Pipeline.MaxBands,
		RecognizeTimeout: cfg.OCR.Timeout,
		Parallelism:      cfg.Pipeline.Parallelism,
		MaxAge:           cfg.Pipeline.MaxAge,
		MinFieldFraction: cfg.Pipeline.MinFieldFraction,
	}
}

func (o Options) maxBands() int {
	if o.MaxBands > 0 {
		return o.MaxBands
	}

	return 3
}

func (o Options) parallelism() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}

	return 2
}

// reader is the concrete implementation of the Reader interface. It
// coordinates the normalizer, the recognition engine and the parsing and
// validation stages.
type reader struct {
	// engine performs text recovery on normalized bands.
	engine ocr.Engine
	// options holds runtime configuration affecting every pipeline stage.
	options Options
	// metrics records per-read instruments; nil disables recording.
	metrics *metrics.Pipeline
}

// candidate is one band's fully parsed and validated outcome.
type candidate struct {
	band       int
	format     domain.Format
	fields     []domain.Field
	validation domain.Validation
	raw        []string
	reported   bool
}

// Read runs the full pipeline over one encoded image. Only an undecodable
// image is an error; every recognition or parsing failure degrades into a
// low-trust document instead, so callers can always inspect partial output.
func (r reader) Read(ctx context.Context, image []byte) (*domain.Document, error) {
	bands, err := Normalize(image, r.options.maxBands())
	if err != nil {
		return nil, err
	}
	if len(bands) == 0 {
		logger.Get(ctx).Debug("no candidate mrz band found")
		doc := unreadableDocument()
		r.metrics.ObserveRead(ctx, string(doc.Trust), 0)

		return doc, nil
	}

	candidates := make([]*candidate, len(bands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.options.parallelism())
	for i, band := range bands {
		g.Go(func() error {
			candidates[i] = r.process(gctx, i, band)

			return nil
		})
	}
	// goroutines only report through the candidates slice
	_ = g.Wait()

	doc := r.choose(candidates)
	r.metrics.ObserveRead(ctx, string(doc.Trust), len(bands))
	logger.Get(ctx).Debug("mrz read completed",
		zap.String("trust", string(doc.Trust)),
		zap.String("format", string(doc.Format)),
		zap.Int("bands", len(bands)))

	return doc, nil
}

// process recognizes, parses and validates one band. Any failure yields nil;
// the band simply does not compete for the result.
func (r reader) process(ctx context.Context, idx int, band Band) *candidate {
	rctx := ctx
	if r.options.RecognizeTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, r.options.RecognizeTimeout)
		defer cancel()
	}

	start := time.Now()
	lines, err := r.engine.Recognize(rctx, band.Image)
	r.metrics.ObserveRecognize(ctx, time.Since(start), err == nil)
	if err != nil {
		logger.Get(ctx).Debug("recognizer failed on band", zap.Int("band", idx), zap.Error(err))

		return nil
	}

	cleaned := cleanLines(lines)
	format, fields, err := Parse(cleaned, ParseOptions{Now: r.options.Now, MaxAge: r.options.MaxAge})
	if err != nil {
		logger.Get(ctx).Debug("band did not parse", zap.Int("band", idx), zap.Error(err))

		return nil
	}

	raw := make([]string, len(cleaned))
	reported := false
	for i, l := range cleaned {
		raw[i] = l.Text
		reported = reported || l.EngineReported
	}

	return &candidate{
		band:       idx,
		format:     format,
		fields:     fields,
		validation: Validate(format, fields),
		raw:        raw,
		reported:   reported,
	}
}

// choose assembles the best candidate into the final document. Bands arrive
// best-first from the normalizer, so ties on trust resolve to the earlier
// band, keeping results deterministic. When a runner-up of the same format
// exists, identity-critical values are cross-checked between the two.
func (r reader) choose(candidates []*candidate) *domain.Document {
	opts := AssembleOptions{MinFieldFraction: r.options.MinFieldFraction}

	var best, second *candidate
	bestTrust := domain.TrustUnreadable
	for _, c := range candidates {
		if c == nil {
			continue
		}
		trust := Assemble(c.format, c.fields, c.validation, c.raw, c.reported, opts).Trust
		if best == nil || trustRank(trust) < trustRank(bestTrust) {
			best, bestTrust = c, trust
		}
	}
	if best == nil {
		return unreadableDocument()
	}
	for _, c := range candidates {
		if c == nil || c == best || c.format != best.format {
			continue
		}
		second = c

		break
	}

	if second != nil {
		best.validation.Consistency = append(best.validation.Consistency,
			CrossCheck(best.fields, second.fields)...)
	}

	doc := Assemble(best.format, best.fields, best.validation, best.raw, best.reported, opts)

	return &doc
}

func trustRank(t domain.TrustLevel) int {
	switch t {
	case domain.TrustVerified:
		return 0
	case domain.TrustPartiallyVerified:
		return 1
	default:
		return 2
	}
}

// cleanLines uppercases recognizer output, removes stray whitespace and drops
// lines too short to be MRZ content. Per-character confidences are kept
// aligned when characters are removed.
func cleanLines(lines []ocr.Line) []ocr.Line {
	out := make([]ocr.Line, 0, len(lines))
	for _, l := range lines {
		var b strings.Builder
		var conf []float64
		for i := 0; i < len(l.Text); i++ {
			c := l.Text[i]
			if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
				continue
			}
			if c >= 'a' && c <= 'z' {
				c -= 'a' - 'A'
			}
			b.WriteByte(c)
			if i < len(l.CharConfidence) {
				conf = append(conf, l.CharConfidence[i])
			}
		}
		if b.Len() < minLineLength {
			continue
		}
		l.Text = b.String()
		if conf != nil && len(conf) != len(l.Text) {
			conf = nil
		}
		l.CharConfidence = conf
		out = append(out, l)
	}

	return out
}

// New creates a new Reader backed by the provided recognition engine and
// configured with the given options.
func New(engine ocr.Engine, options Options, pipelineMetrics *metrics.Pipeline) Reader {
	return &reader{
		engine:  engine,
		options: options,
		metrics: pipelineMetrics,
	}
}
