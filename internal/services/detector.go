package services

import "strings"

// CatastrophicLexicon is the fixed list of alarm terms, in match order.
var CatastrophicLexicon = []string{
	"terrible", "horrible", "fatal", "muerte", "infarto", "embotamiento",
	"bloqueado", "paralizado", "insoportable", "no puedo", "siempre",
	"nunca", "permanente", "incurable", "grave",
}

// Detect returns the lexicon terms contained in text, in lexicon order.
// Matching is a case-insensitive substring test, so "gravedad" matches "grave".
func Detect(text string, lexicon []string) []string {
	found := []string{}
	lower := strings.ToLower(text)
	for _, term := range lexicon {
		if strings.Contains(lower, strings.ToLower(term)) {
			found = append(found, term)
		}
	}
	return found
}
