package translation

import (
	"errors"
	"strings"
)

var ErrNotDetailed = errors.New("only detailed translations contain vocabulary")

// VocabularyCandidate is a word proposed for the user's vocabulary list.
// PartOfSpeech and Difficulty are passed through as the model wrote them.
type VocabularyCandidate struct {
	Word          string
	Translation   string
	PartOfSpeech  string
	Difficulty    string
	Context       string
	Pronunciation string
}

// ExtractVocabulary proposes vocabulary items from a detailed result. A single
// term yields one candidate; a paragraph yields its key vocabulary. Blank and
// repeated words (case-insensitive) are dropped.
func ExtractVocabulary(result Result) ([]VocabularyCandidate, error) {
	if result.Mode != ModeDetailed || result.Detailed == nil {
		return nil, ErrNotDetailed
	}

	var candidates []VocabularyCandidate
	switch result.Detailed.Type {
	case DetailedSingleTerm:
		term := result.Detailed.SingleTerm
		if term == nil {
			return nil, nil
		}
		candidate := VocabularyCandidate{
			Word:          term.Title,
			Translation:   term.MainTranslation,
			PartOfSpeech:  term.LinguisticAnalysis.WordType,
			Pronunciation: term.LinguisticAnalysis.Pronunciation,
		}
		if len(term.Meanings) > 0 {
			candidate.PartOfSpeech = term.Meanings[0].PartOfSpeech
		}
		if len(term.Examples) > 0 {
			candidate.Context = term.Examples[0].Source
		}
		candidates = append(candidates, candidate)
	case DetailedParagraph:
		paragraph := result.Detailed.Paragraph
		if paragraph == nil {
			return nil, nil
		}
		for _, entry := range paragraph.KeyVocabulary {
			candidates = append(candidates, VocabularyCandidate{
				Word:         entry.Word,
				Translation:  entry.Translation,
				PartOfSpeech: entry.PartOfSpeech,
				Difficulty:   entry.Difficulty,
				Context:      entry.Context,
			})
		}
	}

	out := candidates[:0]
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		c.Word = strings.TrimSpace(c.Word)
		c.Translation = strings.TrimSpace(c.Translation)
		key := strings.ToLower(c.Word)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}
