package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minLetters is the shortest sample worth classifying. Shorter input is
// reported as undetermined.
const minLetters = 3

// Detector classifies text among a fixed set of languages. The underlying
// lingua detector is built on first use.
type Detector struct {
	languages []lingua.Language

	once     sync.Once
	detector lingua.LanguageDetector
}

// NewDetector restricts detection to the given ISO 639-1 codes. Unknown
// codes are ignored; with fewer than two known codes every call returns "".
func NewDetector(codes ...string) *Detector {
	d := &Detector{}
	seen := make(map[lingua.Language]struct{}, len(codes))
	for _, code := range codes {
		lang := lingua.GetLanguageFromIsoCode639_1(lingua.GetIsoCode639_1FromValue(strings.ToUpper(strings.TrimSpace(code))))
		if lang == lingua.Unknown {
			continue
		}
		if _, dup := seen[lang]; dup {
			continue
		}
		seen[lang] = struct{}{}
		d.languages = append(d.languages, lang)
	}
	return d
}

// DetectISO6391 returns the lowercase ISO 639-1 code of text, or "" when the
// sample is too short or ambiguous.
func (d *Detector) DetectISO6391(text string) string {
	if d == nil || len(d.languages) < 2 {
		return ""
	}
	sample := strings.TrimSpace(text)
	letters := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < minLetters {
		return ""
	}

	language, exists := d.get().DetectLanguageOf(sample)
	if !exists {
		return ""
	}
	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

func (d *Detector) get() lingua.LanguageDetector {
	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(d.languages...).
			Build()
	})
	return d.detector
}
