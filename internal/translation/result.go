package translation

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Mode string

const (
	ModeSimple   Mode = "simple"
	ModeDetailed Mode = "detailed"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeSimple:
		return ModeSimple, nil
	case ModeDetailed:
		return ModeDetailed, nil
	default:
		return "", fmt.Errorf("%w: mode must be simple or detailed", ErrInvalidInput)
	}
}

// Result is the translation payload returned to clients, cached, and stored
// in history. Exactly one of Translation and Detailed is set, according to
// Mode.
type Result struct {
	Mode        Mode            `json:"mode"`
	Translation string          `json:"translation,omitempty"`
	Detailed    *DetailedResult `json:"detailed,omitempty"`
}

func (r Result) Validate() error {
	switch r.Mode {
	case ModeSimple:
		if strings.TrimSpace(r.Translation) == "" || r.Detailed != nil {
			return fmt.Errorf("simple result requires translation only")
		}
	case ModeDetailed:
		if r.Detailed == nil || r.Translation != "" {
			return fmt.Errorf("detailed result requires detailed analysis only")
		}
		return r.Detailed.validate()
	default:
		return fmt.Errorf("unknown result mode %q", r.Mode)
	}
	return nil
}

type DetailedType string

const (
	DetailedSingleTerm DetailedType = "single_term"
	DetailedParagraph  DetailedType = "paragraph"
)

// DetailedResult is encoded as a flat object tagged by "type".
type DetailedResult struct {
	Type       DetailedType
	SingleTerm *SingleTermAnalysis
	Paragraph  *ParagraphAnalysis
}

func (d DetailedResult) validate() error {
	switch d.Type {
	case DetailedSingleTerm:
		if d.SingleTerm == nil || d.Paragraph != nil {
			return fmt.Errorf("single_term result requires single term analysis")
		}
	case DetailedParagraph:
		if d.Paragraph == nil || d.SingleTerm != nil {
			return fmt.Errorf("paragraph result requires paragraph analysis")
		}
	default:
		return fmt.Errorf("unknown detailed type %q", d.Type)
	}
	return nil
}

func (d DetailedResult) MarshalJSON() ([]byte, error) {
	switch d.Type {
	case DetailedSingleTerm:
		if d.SingleTerm == nil {
			return nil, fmt.Errorf("single_term result has no analysis")
		}
		return json.Marshal(struct {
			Type DetailedType `json:"type"`
			*SingleTermAnalysis
		}{Type: d.Type, SingleTermAnalysis: d.SingleTerm})
	case DetailedParagraph:
		if d.Paragraph == nil {
			return nil, fmt.Errorf("paragraph result has no analysis")
		}
		return json.Marshal(struct {
			Type DetailedType `json:"type"`
			*ParagraphAnalysis
		}{Type: d.Type, ParagraphAnalysis: d.Paragraph})
	default:
		return nil, fmt.Errorf("unknown detailed type %q", d.Type)
	}
}

func (d *DetailedResult) UnmarshalJSON(data []byte) error {
	var tagged struct {
		Type DetailedType `json:"type"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}

	*d = DetailedResult{Type: tagged.Type}
	switch tagged.Type {
	case DetailedSingleTerm:
		d.SingleTerm = &SingleTermAnalysis{}
		return json.Unmarshal(data, d.SingleTerm)
	case DetailedParagraph:
		d.Paragraph = &ParagraphAnalysis{}
		return json.Unmarshal(data, d.Paragraph)
	default:
		return fmt.Errorf("unknown detailed type %q", tagged.Type)
	}
}

type SingleTermAnalysis struct {
	Title              string             `json:"title"`
	MainTranslation    string             `json:"main_translation"`
	Meanings           []Meaning          `json:"meanings"`
	LinguisticAnalysis LinguisticAnalysis `json:"linguistic_analysis"`
	Examples           []Example          `json:"examples"`
	Collocations       []Collocation      `json:"collocations"`
	Comparisons        []Comparison       `json:"comparisons"`
	UsageTips          []string           `json:"usage_tips"`
}

type Meaning struct {
	PartOfSpeech string `json:"part_of_speech"`
	Meaning      string `json:"meaning"`
	Context      string `json:"context"`
}

type LinguisticAnalysis struct {
	WordType      string `json:"word_type"`
	Pronunciation string `json:"pronunciation"`
	GrammarNotes  string `json:"grammar_notes"`
	Etymology     string `json:"etymology"`
}

type Example struct {
	Source      string `json:"source"`
	Translation string `json:"translation"`
}

type Collocation struct {
	Phrase      string `json:"phrase"`
	Translation string `json:"translation"`
}

type Comparison struct {
	Word       string `json:"word"`
	Difference string `json:"difference"`
}

type ParagraphAnalysis struct {
	Title                   string                   `json:"title"`
	FullTranslation         string                   `json:"full_translation"`
	StructureAnalysis       StructureAnalysis        `json:"structure_analysis"`
	KeyVocabulary           []KeyVocabularyEntry     `json:"key_vocabulary"`
	CulturalContext         string                   `json:"cultural_context"`
	StylisticNotes          string                   `json:"stylistic_notes"`
	AlternativeTranslations []AlternativeTranslation `json:"alternative_translations"`
	LearningPoints          []string                 `json:"learning_points"`
}

type StructureAnalysis struct {
	Overview      string   `json:"overview"`
	GrammarPoints []string `json:"grammar_points"`
}

type KeyVocabularyEntry struct {
	Word         string `json:"word"`
	Translation  string `json:"translation"`
	PartOfSpeech string `json:"part_of_speech"`
	Difficulty   string `json:"difficulty"`
	Context      string `json:"context"`
}

type AlternativeTranslation struct {
	Translation string `json:"translation"`
	Note        string `json:"note"`
}
