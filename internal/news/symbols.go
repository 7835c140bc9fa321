package news

import "strings"

// knownSymbols is the fixed NSE vocabulary recognised in free text.
var knownSymbols = []string{
	"reliance", "tcs", "infosys", "hdfcbank", "icicibank",
	"bhartiairtel", "itc", "sbin", "hindunilvr", "asianpaint",
	"maruti", "bajfinance", "hcltech", "wipro", "ongc",
	"tatamotors", "sunpharma", "nestleind", "kotakbank", "ltim",
}

// ExtractSymbols returns the known symbols contained in text, in vocabulary
// order. Matching is plain substring search, so "itc" also fires on "switch".
func ExtractSymbols(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0)
	for _, symbol := range knownSymbols {
		if strings.Contains(lower, symbol) {
			found = append(found, symbol)
		}
	}
	return found
}

// KnownSymbols returns a copy of the recognised vocabulary.
func KnownSymbols() []string {
	out := make([]string, len(knownSymbols))
	copy(out, knownSymbols)
	return out
}
