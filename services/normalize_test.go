package services

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "What Is STAKING", "what is staking"},
		{"strips punctuation", "what is staking?!", "what is staking"},
		{"punctuation becomes word boundary", "btc/eth", "btc eth"},
		{"collapses whitespace", "  what   is\tstaking  ", "what is staking"},
		{"keeps digits", "top 10 tokens", "top 10 tokens"},
		{"empty input", "", ""},
		{"only punctuation", "?!...", ""},
		{"only whitespace", "   \t\n", ""},
		{"unicode letters kept", "стейкинг это что", "стейкинг это что"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeText(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"What is staking?",
		"  lots   of    space  ",
		"$BTC!!!",
	}
	for _, input := range inputs {
		once := NormalizeText(input)
		twice := NormalizeText(once)
		if once != twice {
			t.Errorf("NormalizeText not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}
