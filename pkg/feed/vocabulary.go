package feed

import (
	"errors"
	"strings"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
)

// DefaultTerms is the health vocabulary used by the home feed.
var DefaultTerms = []string{"cancer", "thyroid", "tumor", "oncology", "treatment", "diagnosis", "health", "medicine"}

// Vocabulary is an immutable set of lowercase relevance terms.
type Vocabulary struct {
	terms []string
}

// NewVocabulary normalizes terms to trimmed lowercase, dropping blanks and duplicates.
func NewVocabulary(terms ...string) (Vocabulary, error) {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return Vocabulary{}, errors.New("vocabulary has no terms")
	}
	return Vocabulary{terms: out}, nil
}

// DefaultVocabulary returns the vocabulary built from DefaultTerms.
func DefaultVocabulary() Vocabulary {
	v, _ := NewVocabulary(DefaultTerms...)
	return v
}

// Terms returns a copy of the normalized terms.
func (v Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Len reports the number of terms.
func (v Vocabulary) Len() int { return len(v.terms) }

// MatchesText reports whether text contains any term as a literal,
// case-insensitive substring. Word boundaries are not considered, so
// "tumor" matches "tumorous".
func (v Vocabulary) MatchesText(text string) bool {
	text = strings.ToLower(text)
	for _, t := range v.terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// Matches tests the article's title, description and content joined by spaces.
// Missing fields are empty strings and do not exclude the article on their own.
func (v Vocabulary) Matches(a domain.Article) bool {
	return v.MatchesText(a.Title + " " + a.Description + " " + a.Content)
}
