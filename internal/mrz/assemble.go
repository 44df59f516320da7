package mrz

import "mrzreader/pkg/domain"

// AssembleOptions tune the trust policy.
type AssembleOptions struct {
	// MinFieldFraction is the minimum fraction of fields that must have decoded
	// cleanly for the result to be considered readable at all. Defaults to 0.5.
	MinFieldFraction float64
}

func (o AssembleOptions) minFieldFraction() float64 {
	if o.MinFieldFraction > 0 {
		return o.MinFieldFraction
	}

	return 0.5
}

// Assemble merges parsed fields, validation outcomes and confidence scores
// into the terminal document value. It is a pure function: no I/O, no
// mutation of inputs, deterministic for identical inputs.
//
// Trust policy: Verified requires every check digit to match, no degraded
// field and no consistency flag. Unreadable means format detection failed or
// too few fields decoded cleanly. Everything in between is PartiallyVerified.
func Assemble(format domain.Format, fields []domain.Field, v domain.Validation,
	raw []string, confidenceReported bool, opts AssembleOptions) domain.Document {
	doc := domain.Document{
		Format:             format,
		Fields:             fields,
		Validation:         v,
		Raw:                raw,
		ConfidenceReported: confidenceReported,
	}

	degraded := 0
	sum := 0.0
	for _, f := range fields {
		if f.Degraded {
			degraded++
		}
		sum += f.Confidence
	}
	if len(fields) > 0 {
		doc.Confidence = sum / float64(len(fields))
	}

	switch {
	case format == "" || len(fields) == 0:
		doc.Trust = domain.TrustUnreadable
	case float64(len(fields)-degraded)/float64(len(fields)) < opts.minFieldFraction():
		doc.Trust = domain.TrustUnreadable
	case degraded == 0 && v.Passed():
		doc.Trust = domain.TrustVerified
	default:
		doc.Trust = domain.TrustPartiallyVerified
	}

	return doc
}

// unreadableDocument is the short-circuit result used when no candidate band
// produced a parse: zero fields, lowest trust, no error.
func unreadableDocument() *domain.Document {
	return &domain.Document{Trust: domain.TrustUnreadable}
}
