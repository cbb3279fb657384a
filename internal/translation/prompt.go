package translation

import (
	"fmt"
	"strings"

	"askverba.app/server/internal/language"
)

// singleTermMaxWords is the word count up to which the model is asked for a
// dictionary-style analysis instead of a paragraph analysis.
const singleTermMaxWords = 3

func systemPrompt(mode Mode, pair language.Pair) string {
	source := language.Label(pair.Source)
	target := language.Label(pair.Target)

	var b strings.Builder
	fmt.Fprintf(&b, "You are a %s-%s translator and language teacher.\n", source, target)
	b.WriteString("Answer with JSON only. Do not wrap the JSON in markdown.\n")
	if mode == ModeSimple {
		fmt.Fprintf(&b, "Return {\"translation\": string} holding a natural %s translation and nothing else.", target)
		return b.String()
	}

	fmt.Fprintf(&b, "Explanations, meanings and notes are written in %s. Examples keep the %s original next to the %s translation.\n", target, source, target)
	fmt.Fprintf(&b, "For input of at most %d words return an object with \"type\": \"single_term\": ", singleTermMaxWords)
	b.WriteString("title, main_translation, meanings (part_of_speech, meaning, context), linguistic_analysis (word_type, pronunciation, grammar_notes, etymology), examples (source, translation), collocations (phrase, translation), comparisons (word, difference), usage_tips.\n")
	b.WriteString("For longer input return an object with \"type\": \"paragraph\": ")
	b.WriteString("title, full_translation, structure_analysis (overview, grammar_points), key_vocabulary (word, translation, part_of_speech, difficulty as beginner|intermediate|advanced, context), cultural_context, stylistic_notes, alternative_translations (translation, note), learning_points.")
	return b.String()
}

func userPrompt(mode Mode, pair language.Pair, text string) string {
	words := len(strings.Fields(text))
	if mode == ModeSimple {
		return fmt.Sprintf("Translate from %s to %s:\n\n%s", language.Label(pair.Source), language.Label(pair.Target), text)
	}
	return fmt.Sprintf(
		"Analyze and translate from %s to %s. The input has %d word(s).\n\n%s",
		language.Label(pair.Source),
		language.Label(pair.Target),
		words,
		text,
	)
}
