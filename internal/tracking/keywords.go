// Package tracking gathers ranking, citation and review data for brands.
package tracking

import (
	"strings"

	"brandwatch/internal/models"
)

// maxCategoryTerms bounds how many category terms are combined with the
// brand name, which bounds search API spend per brand.
const maxCategoryTerms = 2

// KeywordGenerator derives search keywords from a brand's name and category.
type KeywordGenerator struct {
	terms map[string][]string
}

// NewKeywordGenerator creates a generator over a category-to-terms map.
func NewKeywordGenerator(terms map[string][]string) *KeywordGenerator {
	return &KeywordGenerator{terms: terms}
}

// Generate returns the brand name, the name combined with up to two
// category terms, and "best <first term>". Unknown categories fall back
// to the "other" terms. The result never exceeds four keywords.
func (g *KeywordGenerator) Generate(brand, category string) []string {
	terms, ok := g.terms[category]
	if !ok {
		terms = g.terms[models.CategoryOther]
	}

	keywords := []string{brand}
	for _, term := range terms[:min(len(terms), maxCategoryTerms)] {
		keywords = append(keywords, brand+" "+term)
	}
	if len(terms) > 0 {
		keywords = append(keywords, "best "+terms[0])
	}
	return keywords
}

// ExpandQuery substitutes the brand name into a query template.
func ExpandQuery(template, brand string) string {
	return strings.ReplaceAll(template, "{brand}", brand)
}
