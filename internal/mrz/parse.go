package mrz

import (
	"fmt"
	"strings"
	"time"

	"mrzreader/pkg/domain"
	"mrzreader/pkg/ocr"
)

// ParseError reports that format detection failed: the recovered lines do not
// match any known MRZ layout even with the one-character length tolerance.
// Individual degraded fields never produce a ParseError; they propagate into
// the result instead.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "mrz format undetectable: " + e.Reason }

// ParseOptions tune the decoding policies that the ICAO layout leaves open.
type ParseOptions struct {
	// Now supplies the reference time for birth-date century inference.
	// Defaults to time.Now.
	Now func() time.Time
	// MaxAge bounds the age implied by a decoded birth date: the century is
	// chosen so the age is non-negative and at most MaxAge years. Defaults to
	// 100. The pivot is deliberately configurable; a hard-coded century would
	// silently mis-decode dates near the boundary.
	MaxAge int
}

func (o ParseOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}

	return time.Now()
}

func (o ParseOptions) maxAge() int {
	if o.MaxAge > 0 {
		return o.MaxAge
	}

	return 100
}

// Parse classifies the recovered lines into a known MRZ layout, segments the
// fixed-width fields and decodes them into typed values. Fields containing
// characters outside the OCR-B set are marked degraded but do not abort
// parsing of the remaining fields.
func Parse(lines []ocr.Line, opts ParseOptions) (domain.Format, []domain.Field, error) {
	spec, normalized, err := detectFormat(lines)
	if err != nil {
		return "", nil, err
	}

	var fields []domain.Field
	for _, fs := range spec.fields {
		line := normalized[fs.line]
		if fs.start+fs.length > len(line.Text) {
			// cannot happen after normalization; never emit a truncated value
			return "", nil, &ParseError{Reason: fmt.Sprintf("field %s exceeds line %d length", fs.name, fs.line)}
		}
		raw := line.Text[fs.start : fs.start+fs.length]
		conf := spanConfidence(line, fs.start, fs.length)
		degraded := !inCharset(raw)

		switch fs.kind {
		case kindNames:
			surname, given := decodeNames(raw)
			fields = append(fields,
				field(domain.FieldSurname, surname, raw, fs, conf, degraded),
				field(domain.FieldGivenNames, given, raw, fs, conf, degraded))
		case kindDate:
			value, ok := decodeDate(raw, fs.name, opts)
			fields = append(fields, field(fs.name, value, raw, fs, conf, degraded || !ok))
		case kindSex:
			value, ok := decodeSex(raw)
			fields = append(fields, field(fs.name, string(value), raw, fs, conf, degraded || !ok))
		case kindCheck:
			ok := len(raw) == 1 && (raw[0] == ocr.Filler || (raw[0] >= '0' && raw[0] <= '9'))
			fields = append(fields, field(fs.name, raw, raw, fs, conf, degraded || !ok))
		default: // kindAlnum
			fields = append(fields, field(fs.name, stripFillers(raw), raw, fs, conf, degraded))
		}
	}

	return spec.format, fields, nil
}

// detectFormat matches line count and line length against the known layout
// table. A single character of length discrepancy is recovered by padding
// with the filler at the end of the line (the declared end-of-field boundary)
// or by dropping one trailing filler; anything else is rejected.
func detectFormat(lines []ocr.Line) (*formatSpec, []ocr.Line, error) {
	if len(lines) != 2 && len(lines) != 3 {
		return nil, nil, &ParseError{Reason: fmt.Sprintf("expected 2 or 3 lines, got %d", len(lines))}
	}

	for i := range formats {
		spec := &formats[i]
		if spec.lineCount != len(lines) {
			continue
		}
		// shared-geometry variants are told apart by the document code
		if spec.format == domain.FormatMRVA || spec.format == domain.FormatMRVB {
			if !isVisa(lines[0].Text) {
				continue
			}
		} else if spec.lineCount == 2 && isVisa(lines[0].Text) {
			continue
		}

		normalized, ok := normalizeLines(lines, spec.lineLen)
		if ok {
			return spec, normalized, nil
		}
	}

	lengths := make([]string, len(lines))
	for i, l := range lines {
		lengths[i] = fmt.Sprint(len(l.Text))
	}

	return nil, nil, &ParseError{
		Reason: fmt.Sprintf("no layout matches %d lines of length %s", len(lines), strings.Join(lengths, ",")),
	}
}

// normalizeLines fits every line to the target length, tolerating a one
// character discrepancy per line.
func normalizeLines(lines []ocr.Line, length int) ([]ocr.Line, bool) {
	out := make([]ocr.Line, len(lines))
	for i, l := range lines {
		switch {
		case len(l.Text) == length:
			out[i] = l
		case len(l.Text) == length-1:
			// recovered by padding at the end-of-field boundary only
			out[i] = padLine(l)
		case len(l.Text) == length+1 && l.Text[len(l.Text)-1] == ocr.Filler:
			out[i] = truncLine(l)
		default:
			return nil, false
		}
	}

	return out, true
}

func padLine(l ocr.Line) ocr.Line {
	l.Text += string(ocr.Filler)
	l.CharConfidence = append(append([]float64(nil), l.CharConfidence...), ocr.DefaultConfidence)

	return l
}

func truncLine(l ocr.Line) ocr.Line {
	l.Text = l.Text[:len(l.Text)-1]
	if len(l.CharConfidence) > len(l.Text) {
		l.CharConfidence = l.CharConfidence[:len(l.Text)]
	}

	return l
}

func field(name domain.FieldName, value, raw string, fs fieldSpec, conf float64, degraded bool) domain.Field {
	return domain.Field{
		Name:       name,
		Value:      value,
		Raw:        raw,
		Line:       fs.line,
		Start:      fs.start,
		Length:     fs.length,
		Confidence: conf,
		Degraded:   degraded,
	}
}

// spanConfidence is the mean per-character confidence over a column span,
// falling back to the line confidence when the engine reported none.
func spanConfidence(l ocr.Line, start, length int) float64 {
	if len(l.CharConfidence) < start+length {
		return l.Confidence
	}
	sum := 0.0
	for _, c := range l.CharConfidence[start : start+length] {
		sum += c
	}

	return sum / float64(length)
}

// inCharset reports whether every character belongs to the OCR-B MRZ set.
func inCharset(s string) bool {
	for i := 0; i < len(s); i++ {
		if _, ok := charValue(s[i]); !ok {
			return false
		}
	}

	return true
}

// stripFillers removes all filler characters; used for numbers and optional data.
func stripFillers(s string) string {
	return strings.ReplaceAll(s, string(ocr.Filler), "")
}

// decodeNames splits the name zone into surname and given names. The double
// filler separates the two; single filler runs collapse to one space and
// trailing fillers are stripped.
func decodeNames(raw string) (surname, given string) {
	trimmed := strings.TrimRight(raw, string(ocr.Filler))
	parts := strings.SplitN(trimmed, "<<", 2)
	surname = collapseFillers(parts[0])
	if len(parts) == 2 {
		given = collapseFillers(parts[1])
	}

	return surname, given
}

func collapseFillers(s string) string {
	var b strings.Builder
	prevFiller := false
	for i := 0; i < len(s); i++ {
		if s[i] == ocr.Filler {
			if !prevFiller {
				b.WriteByte(' ')
			}
			prevFiller = true

			continue
		}
		prevFiller = false
		b.WriteByte(s[i])
	}

	return strings.TrimSpace(b.String())
}

// decodeDate turns a YYMMDD slice into an ISO 8601 date. Birth dates infer
// the century so the implied age stays within [0, MaxAge]; expiry dates are
// taken to be in the 2000s.
func decodeDate(raw string, name domain.FieldName, opts ParseOptions) (string, bool) {
	if len(raw) != 6 {
		return "", false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return "", false
		}
	}
	yy := int(raw[0]-'0')*10 + int(raw[1]-'0')
	mm := int(raw[2]-'0')*10 + int(raw[3]-'0')
	dd := int(raw[4]-'0')*10 + int(raw[5]-'0')
	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return "", false
	}

	century := 2000
	if name == domain.FieldBirthDate {
		now := opts.now()
		year := 2000 + yy
		if year > now.Year() || now.Year()-year > opts.maxAge() {
			year = 1900 + yy
		}
		if now.Year()-year > opts.maxAge() || year > now.Year() {
			return "", false
		}
		century = year - yy
	}

	date := time.Date(century+yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	// reject impossible dates like February 30th
	if int(date.Month()) != mm || date.Day() != dd {
		return "", false
	}

	return date.Format("2006-01-02"), true
}

// decodeSex maps the single-character field to its decoded form.
func decodeSex(raw string) (domain.Sex, bool) {
	if len(raw) != 1 {
		return domain.SexUnspecified, false
	}
	switch raw[0] {
	case 'M':
		return domain.SexMale, true
	case 'F':
		return domain.SexFemale, true
	case ocr.Filler:
		return domain.SexUnspecified, true
	default:
		return domain.SexUnspecified, false
	}
}
