// Package language normalizes language codes and describes the language
// pair a deployment translates between.
package language

import (
	"fmt"
	"strings"
)

var labels = map[string]string{
	"ar": "Arabic",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"th": "Thai",
	"tr": "Turkish",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// NormalizeCode returns the lowercase primary subtag ("en" from "en_US").
// Blank or non-alphabetic input yields "".
func NormalizeCode(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" {
		return ""
	}
	for _, r := range tag {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	return tag
}

// Label returns the English name of code, or the code itself when unknown.
func Label(code string) string {
	normalized := NormalizeCode(code)
	if label, ok := labels[normalized]; ok {
		return label
	}
	if normalized == "" {
		return strings.TrimSpace(code)
	}
	return normalized
}

func Supported(code string) bool {
	_, ok := labels[NormalizeCode(code)]
	return ok
}

// Pair is a translation direction.
type Pair struct {
	Source string
	Target string
}

func NewPair(source, target string) (Pair, error) {
	p := Pair{Source: NormalizeCode(source), Target: NormalizeCode(target)}
	if p.Source == "" || p.Target == "" {
		return Pair{}, fmt.Errorf("source and target languages are required")
	}
	if p.Source == p.Target {
		return Pair{}, fmt.Errorf("source and target languages must differ")
	}
	if !Supported(p.Source) || !Supported(p.Target) {
		return Pair{}, fmt.Errorf("unsupported language pair %s-%s", p.Source, p.Target)
	}
	return p, nil
}

func (p Pair) Reverse() Pair {
	return Pair{Source: p.Target, Target: p.Source}
}

func (p Pair) String() string {
	return p.Source + "-" + p.Target
}
