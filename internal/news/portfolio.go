package news

import (
	"strings"

	"NewsImpact/internal/domain"
)

// companyAliases maps a lower-case ticker to the names articles use for it.
var companyAliases = map[string][]string{
	"reliance":     {"reliance", "ril", "reliance industries"},
	"tcs":          {"tcs", "tata consultancy", "tata consultancy services"},
	"infosys":      {"infosys", "infy"},
	"hdfcbank":     {"hdfc bank", "hdfc", "hdfcbank"},
	"icicibank":    {"icici bank", "icici", "icicibank"},
	"bhartiairtel": {"bharti airtel", "airtel", "bharti"},
	"itc":          {"itc", "indian tobacco"},
	"sbin":         {"sbi", "state bank", "state bank of india"},
	"hindunilvr":   {"hindustan unilever", "hul", "unilever"},
	"asianpaint":   {"asian paints", "asian paint"},
}

// Aliases returns the search terms for a symbol: the symbol itself plus any
// known company names.
func Aliases(symbol string) []string {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil
	}
	terms := []string{symbol}
	for _, alias := range companyAliases[symbol] {
		if alias != symbol {
			terms = append(terms, alias)
		}
	}
	return terms
}

// MentionsSymbol reports whether text contains the symbol or one of its aliases.
func MentionsSymbol(text, symbol string) bool {
	text = strings.ToLower(text)
	for _, term := range Aliases(symbol) {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// FilterByPortfolio keeps articles mentioning at least one portfolio symbol.
// An empty portfolio returns the articles unchanged.
func FilterByPortfolio(articles []domain.Article, symbols []string) []domain.Article {
	portfolio := cleanSymbols(symbols)
	if len(portfolio) == 0 {
		return articles
	}

	filtered := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		text := article.Text()
		for _, symbol := range portfolio {
			if MentionsSymbol(text, symbol) {
				filtered = append(filtered, article)
				break
			}
		}
	}
	return filtered
}

func cleanSymbols(symbols []string) []string {
	cleaned := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if s := strings.TrimSpace(symbol); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}
