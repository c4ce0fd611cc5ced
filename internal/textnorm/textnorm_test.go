package textnorm

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"acentos", "Manutenção", "manutencao"},
		{"maiusculas", "GERADOR 55KVA", "gerador 55kva"},
		{"espacos", "  Depósito Malta ", "deposito malta"},
		{"vazio", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fold(tt.input); got != tt.expected {
				t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestContainsAny(t *testing.T) {
	if !ContainsAny("belem", "Obra Belém Centro") {
		t.Error("expected accent-insensitive match")
	}
	if !ContainsAny("", "anything") {
		t.Error("empty query matches everything")
	}
	if ContainsAny("cummins", "CATERPILLAR", "") {
		t.Error("unexpected match")
	}
}
