package services

import "testing"

func TestIsPriceQuery(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"bare known ticker", "btc", true},
		{"bare known ticker uppercase", "ADA", true},
		{"price prefix", "price BTC", true},
		{"price suffix", "ETH price", true},
		{"dollar prefix", "$sol", true},
		{"dollar prefix uppercase", "$BTC", true},
		{"unknown ticker with price shape", "xyz price", true},
		{"bare unknown word", "hello", false},
		{"bare gas is not a ticker", "gas", false},
		{"gas price shape", "gas price", true},
		{"sentence is not a shape", "what is the price of bitcoin today", false},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"dollar amount mid-sentence", "i paid $50 for fees", false},
		{"price is not its own symbol", "price price", false},
		{"dollar price is not a symbol", "$price", false},
		{"uppercase price word rejected", "PRICE price", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPriceQuery(tt.text); got != tt.want {
				t.Errorf("IsPriceQuery(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractSymbol(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"price BTC", "btc"},
		{"ETH price", "eth"},
		{"$sol", "sol"},
		{"ADA", "ada"},
		{"gas price", "gas"},
	}

	for _, tt := range tests {
		if got := ExtractSymbol(tt.text); got != tt.want {
			t.Errorf("ExtractSymbol(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestDetectPriceQuery(t *testing.T) {
	q := DetectPriceQuery("price doge")
	if !q.IsValid || q.Symbol != "doge" {
		t.Errorf("DetectPriceQuery(\"price doge\") = %+v, want valid with symbol doge", q)
	}

	q = DetectPriceQuery("how are you")
	if q.IsValid || q.Symbol != "" {
		t.Errorf("DetectPriceQuery(\"how are you\") = %+v, want invalid", q)
	}
}

func TestProviderID(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"btc", "bitcoin"},
		{"BTC", "bitcoin"},
		{"eth", "ethereum"},
		{"matic", "matic-network"},
		{"unknowncoin", "unknowncoin"},
	}

	for _, tt := range tests {
		if got := ProviderID(tt.symbol); got != tt.want {
			t.Errorf("ProviderID(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}
