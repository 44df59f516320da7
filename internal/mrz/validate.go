package mrz

import (
	"fmt"
	"strings"

	"mrzreader/pkg/domain"
	"mrzreader/pkg/ocr"
)

// Consistency flag values raised by the validator and the cross-candidate
// comparison. They are distinct from checksum mismatches: a recognizer
// substitution can satisfy the check-digit arithmetic and still be caught by
// a redundancy check.
const (
	flagDocumentNumberContinuation = "documentNumberContinuation"
	candidateMismatchSuffix        = ":candidateMismatch"
)

// Validate recomputes every ICAO check digit the format defines, plus the
// composite, and runs the in-document redundancy checks. It attaches outcomes
// without ever mutating or discarding field values; trust policy belongs to
// the assembler and, ultimately, the caller.
func Validate(format domain.Format, fields []domain.Field) domain.Validation {
	spec := specFor(format)
	if spec == nil {
		return domain.Validation{}
	}

	raws := make(map[domain.FieldName]string, len(fields))
	for _, f := range fields {
		raws[f.Name] = f.Raw
	}

	var v domain.Validation
	for _, pair := range spec.checks {
		if format == domain.FormatTD1 && pair.value == domain.FieldDocumentNumber && hasNumberContinuation(raws) {
			outcome, flag := checkNumberContinuation(raws)
			v.Checks = append(v.Checks, outcome)
			if flag != "" {
				v.Consistency = append(v.Consistency, flag)
			}

			continue
		}
		v.Checks = append(v.Checks, check(pair.value, raws[pair.value], raws[pair.digit]))
	}

	if len(spec.composite) > 0 {
		var b strings.Builder
		for _, name := range spec.composite {
			b.WriteString(raws[name])
		}
		v.Checks = append(v.Checks, check(domain.FieldComposite, b.String(), raws[domain.FieldComposite]))
	}

	return v
}

// check recomputes one check digit. A recognized filler counts as zero, which
// ICAO permits for empty optional fields (notably the TD3 personal number).
func check(name domain.FieldName, value, recognized string) domain.CheckDigit {
	out := domain.CheckDigit{Field: name, Recognized: recognized}

	digit, err := ComputeCheckDigit(value)
	if err != nil {
		// unverifiable; the field itself is already marked degraded
		return out
	}
	out.Recomputed = string(digit)

	if recognized == string(ocr.Filler) && digit == '0' {
		out.Matches = true

		return out
	}
	out.Matches = recognized == out.Recomputed

	return out
}

// hasNumberContinuation reports whether a TD1 line 1 uses the ICAO long
// document-number convention: the check-digit column holds a filler and the
// optional-data field carries the remainder of the number followed by the
// real check digit.
func hasNumberContinuation(raws map[domain.FieldName]string) bool {
	return raws[domain.FieldDocumentNumberCheck] == string(ocr.Filler) &&
		stripFillers(raws[domain.FieldOptionalData]) != ""
}

// checkNumberContinuation evaluates the continued document number against the
// check digit embedded in optional data. A malformed continuation raises a
// consistency flag in addition to the failed check, since it indicates the
// zones disagree about where the number ends.
func checkNumberContinuation(raws map[domain.FieldName]string) (domain.CheckDigit, string) {
	ext := strings.TrimRight(raws[domain.FieldOptionalData], string(ocr.Filler))
	if len(ext) < 2 {
		return domain.CheckDigit{Field: domain.FieldDocumentNumber}, flagDocumentNumberContinuation
	}

	full := stripFillers(raws[domain.FieldDocumentNumber]) + ext[:len(ext)-1]
	outcome := check(domain.FieldDocumentNumber, full, ext[len(ext)-1:])
	if !outcome.Matches {
		return outcome, flagDocumentNumberContinuation
	}

	return outcome, ""
}

// CrossCheck compares values that were decoded independently from two
// candidate bands of the same document. Disagreement on an identity-critical
// field raises a consistency flag naming the field.
func CrossCheck(primary, secondary []domain.Field) []string {
	secondaries := make(map[domain.FieldName]domain.Field, len(secondary))
	for _, f := range secondary {
		secondaries[f.Name] = f
	}

	var flags []string
	for _, f := range primary {
		switch f.Name {
		case domain.FieldDocumentNumber, domain.FieldBirthDate, domain.FieldExpiryDate:
		default:
			continue
		}
		other, ok := secondaries[f.Name]
		if !ok || f.Degraded || other.Degraded {
			continue
		}
		if f.Value != other.Value {
			flags = append(flags, fmt.Sprintf("%s%s", f.Name, candidateMismatchSuffix))
		}
	}

	return flags
}
