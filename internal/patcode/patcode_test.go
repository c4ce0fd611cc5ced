package patcode

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"001234", "001234"},
		{"1234", "001234"},
		{" 42 ", "000042"},
		{"PAT-5678", "005678"},
		{"pat 000001", "000001"},
		{"PAT:999999", "999999"},
	}

	for _, test := range tests {
		result, err := Normalize(test.input)
		if err != nil {
			t.Errorf("Normalize(%q) returned error: %v", test.input, err)
			continue
		}
		if result != test.expected {
			t.Errorf("Normalize(%q) = %q; expected %q", test.input, result, test.expected)
		}
	}
}

func TestNormalizeRejects(t *testing.T) {
	for _, input := range []string{"", "   ", "PAT", "1234567", "12a4", "-123", "12.5"} {
		if _, err := Normalize(input); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("Normalize(%q) error = %v; expected ErrInvalidCode", input, err)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("000123") {
		t.Error("expected 000123 to be valid")
	}
	if Valid("123") {
		t.Error("expected 123 to be reported as not normalized")
	}
}
