package mrz

import (
	"fmt"
	"strings"

	"mrzreader/pkg/domain"
	"mrzreader/pkg/ocr"
)

// Encode renders field values into synthetic MRZ lines for the given format,
// using the same column tables and check-digit arithmetic as the parser and
// validator. It exists for fixture generation and as the round-trip
// counterpart of Parse: parsing an encoded document reproduces the values.
//
// Expected value forms: dates as raw YYMMDD digits, sex as "M", "F" or empty,
// names as their decoded (space-separated) form, everything else as
// filler-stripped text. Check digits and the composite are computed, never
// taken from the input.
func Encode(format domain.Format, values map[domain.FieldName]string) ([]string, error) {
	spec := specFor(format)
	if spec == nil {
		return nil, fmt.Errorf("unknown format %q", format)
	}

	lines := make([][]byte, spec.lineCount)
	for i := range lines {
		lines[i] = []byte(strings.Repeat(string(ocr.Filler), spec.lineLen))
	}

	raws := make(map[domain.FieldName]string, len(spec.fields))
	place := func(fs fieldSpec, raw string) {
		copy(lines[fs.line][fs.start:fs.start+fs.length], raw)
		raws[fs.name] = raw
	}

	// value fields first; check digits depend on their rendered raw form
	for _, fs := range spec.fields {
		if fs.kind == kindCheck {
			continue
		}
		raw, err := renderField(fs, values)
		if err != nil {
			return nil, err
		}
		place(fs, raw)
	}

	for _, pair := range spec.checks {
		digit, err := ComputeCheckDigit(raws[pair.value])
		if err != nil {
			return nil, fmt.Errorf("could not compute %s check digit: %w", pair.value, err)
		}
		place(findField(spec, pair.digit), string(digit))
	}

	if len(spec.composite) > 0 {
		var b strings.Builder
		for _, name := range spec.composite {
			b.WriteString(raws[name])
		}
		digit, err := ComputeCheckDigit(b.String())
		if err != nil {
			return nil, fmt.Errorf("could not compute composite check digit: %w", err)
		}
		place(findField(spec, domain.FieldComposite), string(digit))
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = string(l)
	}

	return out, nil
}

func findField(spec *formatSpec, name domain.FieldName) fieldSpec {
	for _, fs := range spec.fields {
		if fs.name == name {
			return fs
		}
	}

	// tables always contain the named check fields
	panic(fmt.Sprintf("format %s has no field %s", spec.format, name))
}

func renderField(fs fieldSpec, values map[domain.FieldName]string) (string, error) {
	switch fs.kind {
	case kindNames:
		return renderNames(values[domain.FieldSurname], values[domain.FieldGivenNames], fs.length)
	case kindDate:
		v := values[fs.name]
		if len(v) != 6 {
			return "", fmt.Errorf("field %s must be 6 digits, got %q", fs.name, v)
		}

		return v, nil
	case kindSex:
		v := values[fs.name]
		if v == "" {
			return string(ocr.Filler), nil
		}
		if v != "M" && v != "F" {
			return "", fmt.Errorf("field %s must be M, F or empty, got %q", fs.name, v)
		}

		return v, nil
	default:
		return padRight(fillerize(values[fs.name]), fs.length)
	}
}

func renderNames(surname, given string, length int) (string, error) {
	raw := fillerize(surname)
	if given != "" {
		raw += "<<" + fillerize(given)
	}

	return padRight(raw, length)
}

// fillerize converts a decoded value back into its MRZ raw form: uppercase,
// spaces become fillers.
func fillerize(s string) string {
	return strings.ReplaceAll(strings.ToUpper(s), " ", string(ocr.Filler))
}

func padRight(s string, length int) (string, error) {
	if len(s) > length {
		return "", fmt.Errorf("value %q exceeds field width %d", s, length)
	}

	return s + strings.Repeat(string(ocr.Filler), length-len(s)), nil
}
