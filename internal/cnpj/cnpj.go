// Package cnpj validates Brazilian company registry numbers and looks up
// the companies behind them.
package cnpj

import (
	"errors"
	"strings"
)

var ErrInvalid = errors.New("invalid CNPJ")

var (
	firstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	secondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Normalize strips punctuation and checks length and check digits. It
// returns the 14 bare digits.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '/' || r == '-' || r == ' ':
		default:
			return "", ErrInvalid
		}
	}
	digits := b.String()
	if len(digits) != 14 || strings.Count(digits, digits[:1]) == 14 {
		return "", ErrInvalid
	}
	if checkDigit(digits[:12], firstWeights) != digits[12] || checkDigit(digits[:13], secondWeights) != digits[13] {
		return "", ErrInvalid
	}
	return digits, nil
}

func checkDigit(digits string, weights []int) byte {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	rest := sum % 11
	if rest < 2 {
		return '0'
	}
	return byte('0' + 11 - rest)
}

// Format renders 14 digits as 00.000.000/0000-00.
func Format(digits string) string {
	if len(digits) != 14 {
		return digits
	}
	return digits[0:2] + "." + digits[2:5] + "." + digits[5:8] + "/" + digits[8:12] + "-" + digits[12:14]
}
