package integrations

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
)

const (
	contextRadius      = 100
	semanticContextLen = 200
	minVerifiableLen   = 20
	maxVerifyTextLen   = 800

	// NotDescribedContext is stored when a response does not mention the brand.
	NotDescribedContext = "Brand not described in response"
)

// Verifier decides whether text discusses a brand without naming it.
type Verifier interface {
	Verify(ctx context.Context, brand, text string) (bool, error)
}

// Mention is the outcome of matching a brand against a response.
type Mention struct {
	Mentioned bool
	Direct    bool
	Context   string
}

// Matcher finds brand mentions, falling back to a Verifier when the name
// is absent. Verifier failures count as "not mentioned".
type Matcher struct {
	verifier Verifier
}

// NewMatcher creates a matcher. A nil verifier disables the semantic check.
func NewMatcher(v Verifier) *Matcher {
	return &Matcher{verifier: v}
}

// Match reports whether text mentions brand and extracts context around it.
func (m *Matcher) Match(ctx context.Context, brand, text string) Mention {
	textRunes := []rune(text)
	if pos := indexFold(textRunes, []rune(brand)); pos >= 0 {
		return Mention{
			Mentioned: true,
			Direct:    true,
			Context:   directContext(textRunes, pos, len([]rune(brand))),
		}
	}

	if m.verifier != nil && len(textRunes) >= minVerifiableLen {
		ok, err := m.verifier.Verify(ctx, brand, text)
		if err != nil {
			slog.Debug("semantic verification failed", "brand", brand, "error", err)
		}
		if err == nil && ok {
			return Mention{Mentioned: true, Context: semanticContext(textRunes)}
		}
	}

	return Mention{Context: NotDescribedContext}
}

// directContext returns up to contextRadius runes either side of the match,
// marking truncated ends with "...".
func directContext(text []rune, pos, length int) string {
	start := max(0, pos-contextRadius)
	end := min(len(text), pos+length+contextRadius)

	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(string(text[start:end]))
	if end < len(text) {
		b.WriteString("...")
	}
	return b.String()
}

func semanticContext(text []rune) string {
	if len(text) > semanticContextLen {
		return string(text[:semanticContextLen]) + "..."
	}
	return string(text)
}

// indexFold returns the rune index of the first case-insensitive occurrence
// of needle in haystack, or -1.
func indexFold(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if unicode.ToLower(haystack[i+j]) != unicode.ToLower(r) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// verifyPrompt builds the YES/NO question sent to the verifier model.
func verifyPrompt(brand, text string) string {
	runes := []rune(text)
	if len(runes) > maxVerifyTextLen {
		runes = runes[:maxVerifyTextLen]
	}
	return "Analyze this text and answer only YES or NO:\n" +
		"Does this text describe or discuss \"" + brand + "\" (the company/product)?\n\n" +
		"Text to analyze:\n" + string(runes) + "\n\n" +
		"Answer only YES or NO:"
}
