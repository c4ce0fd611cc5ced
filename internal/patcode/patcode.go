// Package patcode normalizes PAT (patrimony) codes to their fixed six-digit form.
package patcode

import (
	"errors"
	"fmt"
	"strings"
)

// Width is the fixed number of digits of a PAT code.
const Width = 6

var ErrInvalidCode = errors.New("invalid PAT code")

// Normalize trims the input, drops an optional "PAT" prefix and left-pads
// the digits with zeros: "PAT-1234" -> "001234".
func Normalize(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	upper := strings.ToUpper(code)
	if strings.HasPrefix(upper, "PAT") {
		code = strings.TrimSpace(code[3:])
		code = strings.TrimLeft(code, "-: ")
	}

	if code == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidCode)
	}
	if len(code) > Width {
		return "", fmt.Errorf("%w: %q has more than %d digits", ErrInvalidCode, raw, Width)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q must be numeric", ErrInvalidCode, raw)
		}
	}

	return strings.Repeat("0", Width-len(code)) + code, nil
}

// Valid reports whether code is already in normalized form.
func Valid(code string) bool {
	n, err := Normalize(code)
	return err == nil && n == code
}
