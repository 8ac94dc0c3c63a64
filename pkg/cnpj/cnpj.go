// Package cnpj normalizes Brazilian tax identifiers (CNPJ/CPF) the way
// the import pipeline and agency registry need them: digits only, 14
// digits for a CNPJ or 11 for a CPF used by sole proprietors.
package cnpj

import (
	"errors"
	"strings"
)

var ErrInvalid = errors.New("cnpj: must contain 11 or 14 digits")

// Normalize strips punctuation and validates length. Formatting like
// "12.345.678/0001-95" and plain digit strings are both accepted.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 11 && len(digits) != 14 {
		return "", ErrInvalid
	}
	return digits, nil
}

// Format renders a 14-digit CNPJ (or 11-digit CPF) with standard
// punctuation for display. Unrecognized lengths pass through unchanged.
func Format(digits string) string {
	switch len(digits) {
	case 14:
		return digits[0:2] + "." + digits[2:5] + "." + digits[5:8] + "/" + digits[8:12] + "-" + digits[12:14]
	case 11:
		return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
	default:
		return digits
	}
}
