package mrz

import "fmt"

// checkWeights is the ICAO Doc 9303 weighting cycle applied left to right.
var checkWeights = [3]int{7, 3, 1}

// charValue maps an MRZ character to its check-digit contribution:
// digits map to themselves, letters to 10..35 (A=10), the filler to 0.
func charValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, true
	case c == '<':
		return 0, true
	default:
		return 0, false
	}
}

// ComputeCheckDigit returns the ICAO check digit ('0'..'9') for the given
// character sequence: the weighted sum of character values modulo 10. An error
// is returned when the sequence contains a character outside the OCR-B set;
// callers treat that as an unverifiable (degraded) field, not a fatal failure.
func ComputeCheckDigit(s string) (byte, error) {
	sum := 0
	for i := 0; i < len(s); i++ {
		v, ok := charValue(s[i])
		if !ok {
			return 0, fmt.Errorf("character %q at position %d is outside the MRZ character set", s[i], i)
		}
		sum += v * checkWeights[i%3]
	}

	return byte('0' + sum%10), nil
}
