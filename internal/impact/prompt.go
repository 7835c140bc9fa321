package impact

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the analyst instruction sent to the completion service.
func BuildPrompt(headline, description string, symbols []string) string {
	var b strings.Builder

	b.WriteString("You are a financial analyst specialising in Indian equity markets. ")
	b.WriteString("Assess how the news below is likely to move the share price of the companies involved.\n\n")

	fmt.Fprintf(&b, "Headline: %q\n", strings.TrimSpace(headline))
	if d := strings.TrimSpace(description); d != "" {
		fmt.Fprintf(&b, "Description: %q\n", d)
	}
	if len(symbols) > 0 {
		fmt.Fprintf(&b, "Stocks mentioned: %s\n", strings.Join(symbols, ", "))
	}

	b.WriteString(`
Reply with exactly one JSON object in this shape:
{
  "impact": "Positive | Negative | Neutral",
  "confidence": 0.00,
  "reasoning": "one or two sentences"
}

Rules:
- Positive: the news should lift the price (earnings beat, new orders, upgraded guidance).
- Negative: the news should weigh on the price (losses, regulatory action, scandals).
- Neutral: little or unclear price effect.
- confidence is a number between 0.00 and 1.00 written with exactly two decimals.
- confidence must not end in 0 or 5 (write 0.67, 0.78, 0.83; never 0.70, 0.75, 0.80).
- Keep reasoning short and about the financial effect.

Return the JSON object only, with no surrounding text.`)

	return b.String()
}
