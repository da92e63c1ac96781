package services

import (
	"regexp"
	"strings"

	"crypto-support-bot/models"
)

// knownTickers maps short ticker symbols to the price provider's
// canonical IDs. Detection does not require membership here: unknown
// tickers are still accepted by the generic "<word> price" shapes and
// passed through to the provider as a best-effort guess.
var knownTickers = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"sol":   "solana",
	"ada":   "cardano",
	"xrp":   "ripple",
	"doge":  "dogecoin",
	"dot":   "polkadot",
	"matic": "matic-network",
	"link":  "chainlink",
	"ltc":   "litecoin",
	"bnb":   "binancecoin",
	"avax":  "avalanche-2",
	"atom":  "cosmos",
	"uni":   "uniswap",
	"shib":  "shiba-inu",
}

// Shape patterns are anchored on the whole trimmed string and
// case-insensitive.
var (
	pricePrefixPattern = regexp.MustCompile(`(?i)^price\s+([a-z0-9]+)$`)
	priceSuffixPattern = regexp.MustCompile(`(?i)^([a-z0-9]+)\s+price$`)
	dollarPattern      = regexp.MustCompile(`(?i)^\$([a-z0-9]+)$`)
)

// IsPriceQuery reports whether the text is asking for a cryptocurrency
// price: a bare known ticker, "<word> price", "price <word>" or
// "$<word>".
func IsPriceQuery(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}

	if _, ok := knownTickers[strings.ToLower(t)]; ok {
		return true
	}

	// The captured token must be an actual symbol candidate: "price
	// price" and "$price" have no ticker to extract.
	if m := pricePrefixPattern.FindStringSubmatch(t); m != nil {
		return strings.ToLower(m[1]) != "price"
	}
	if m := priceSuffixPattern.FindStringSubmatch(t); m != nil {
		return strings.ToLower(m[1]) != "price"
	}
	if m := dollarPattern.FindStringSubmatch(t); m != nil {
		return strings.ToLower(m[1]) != "price"
	}
	return false
}

// ExtractSymbol strips text already confirmed as a price query down to
// the ticker token, lower-cased: second word for "price X", first word
// for "X price", the token after "$", or the first word for a bare
// ticker.
func ExtractSymbol(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	fields := strings.Fields(t)
	if len(fields) == 0 {
		return ""
	}

	switch {
	case len(fields) == 2 && fields[0] == "price" && fields[1] != "price":
		return fields[1]
	case len(fields) == 2 && fields[1] == "price" && fields[0] != "price":
		return fields[0]
	case strings.HasPrefix(fields[0], "$"):
		return strings.TrimPrefix(fields[0], "$")
	default:
		return fields[0]
	}
}

// DetectPriceQuery combines detection and extraction into one transient
// result
func DetectPriceQuery(text string) models.PriceQuery {
	if !IsPriceQuery(text) {
		return models.PriceQuery{RawText: text}
	}
	return models.PriceQuery{
		RawText: text,
		Symbol:  ExtractSymbol(text),
		IsValid: true,
	}
}

// ProviderID resolves a ticker to the provider's canonical ID; unmapped
// symbols pass through unchanged as a best-effort guess.
func ProviderID(symbol string) string {
	lower := strings.ToLower(symbol)
	if id, ok := knownTickers[lower]; ok {
		return id
	}
	return lower
}
