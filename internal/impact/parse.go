package impact

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"NewsImpact/internal/domain"
)

const (
	defaultConfidence  = 0.5
	keywordConfidence  = 0.6
	noReasoning        = "No reasoning provided"
	keywordReasoning   = "Analysis based on text interpretation due to parsing error"
	technicalReasoning = "Unable to analyze due to technical error. Please try again."
)

var (
	errNoJSONObject = errors.New("no json object in response")

	positiveExpr     = regexp.MustCompile(`positive|bullish|good`)
	negativeExpr     = regexp.MustCompile(`negative|bearish|bad`)
	leadingFloatExpr = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

type rawAnalysis struct {
	Impact     any `json:"impact"`
	Confidence any `json:"confidence"`
	Reasoning  any `json:"reasoning"`
}

// ExtractJSONObject returns the first balanced top-level {...} object found in
// text. Markdown code fences are ignored and braces inside string literals do
// not count.
func ExtractJSONObject(text string) (string, error) {
	text = stripCodeFences(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", errNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unbalanced json object starting at %d: %w", start, errNoJSONObject)
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseResponse turns free-form completion text into a well-formed result.
// Text without a usable JSON object falls back to ClassifyKeywords.
func ParseResponse(text string, jitter Jitter) domain.AnalysisResult {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return ClassifyKeywords(text)
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return ClassifyKeywords(text)
	}

	reasoning := strings.TrimSpace(asString(raw.Reasoning))
	if reasoning == "" {
		reasoning = noReasoning
	}

	return domain.AnalysisResult{
		Impact:     NormalizeImpact(asString(raw.Impact)),
		Confidence: NormalizeConfidence(coerceConfidence(raw.Confidence), jitter),
		Reasoning:  reasoning,
	}
}

// NormalizeImpact maps loose labels ("very positive", "NEG") onto the enum.
func NormalizeImpact(value string) domain.Impact {
	lower := strings.ToLower(value)
	switch {
	case strings.Contains(lower, "pos"):
		return domain.ImpactPositive
	case strings.Contains(lower, "neg"):
		return domain.ImpactNegative
	default:
		return domain.ImpactNeutral
	}
}

// NormalizeConfidence clamps c to [0,1], nudges whole-percent multiples of
// five (other than 50) by a jitter offset and rounds to two decimals.
func NormalizeConfidence(c float64, jitter Jitter) float64 {
	c = clamp(c)
	pct := int(math.Round(c * 100))
	if pct%5 == 0 && pct != 50 && jitter != nil {
		c = clamp(c + jitter.Offset())
	}
	return round2(c)
}

// ClassifyKeywords is the coarse fallback used when no JSON can be read.
func ClassifyKeywords(text string) domain.AnalysisResult {
	lower := strings.ToLower(text)
	result := domain.AnalysisResult{
		Impact:     domain.ImpactNeutral,
		Confidence: defaultConfidence,
		Reasoning:  keywordReasoning,
		Failed:     true,
	}
	switch {
	case positiveExpr.MatchString(lower):
		result.Impact = domain.ImpactPositive
		result.Confidence = keywordConfidence
	case negativeExpr.MatchString(lower):
		result.Impact = domain.ImpactNegative
		result.Confidence = keywordConfidence
	}
	return result
}

// TechnicalFailure is the result reported when the completion call fails.
func TechnicalFailure() domain.AnalysisResult {
	return domain.AnalysisResult{
		Impact:     domain.ImpactNeutral,
		Confidence: defaultConfidence,
		Reasoning:  technicalReasoning,
		Failed:     true,
	}
}

// coerceConfidence accepts numbers and numeric strings; zero, missing and
// unreadable values become the default.
func coerceConfidence(value any) float64 {
	var c float64
	switch v := value.(type) {
	case float64:
		c = v
	case string:
		c = parseLeadingFloat(strings.TrimSpace(v))
	}
	if c == 0 || math.IsNaN(c) || math.IsInf(c, 0) {
		return defaultConfidence
	}
	return c
}

func parseLeadingFloat(s string) float64 {
	match := leadingFloatExpr.FindString(s)
	if match == "" {
		return 0
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return f
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func clamp(c float64) float64 {
	return math.Max(0, math.Min(1, c))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
