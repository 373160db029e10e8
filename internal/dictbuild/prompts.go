package dictbuild

import "fmt"

const noCommonWords = "no common words found"

func candidatePrompt(prefix string, count, minLength int, strict bool) string {
	if strict {
		return fmt.Sprintf(`List up to %d common English words that start with %q.
Only include words an average adult reader would recognise, at least %d letters long.
If there are no such words, reply exactly: %s
Write one word per line with no numbering or commentary.`, count, prefix, minLength, noCommonWords)
	}
	return fmt.Sprintf(`List %d common English words that start with %q.
Rules:
- everyday vocabulary only, no proper nouns, abbreviations or slang
- at least %d letters long
- one word per line with no numbering or commentary`, count, prefix, minLength)
}

func reviewPrompt(word, language string) string {
	return fmt.Sprintf(`You are building an English-%[1]s dictionary for language learners.
Evaluate the English word %[2]q.
Reply with one JSON object and nothing else:
{"accept": true, "proper_noun": false, "rarity": 1, "confidence": 0.0,
 "pos": "noun|verb|adjective|adverb|other",
 "definition_en": "", "example_en": "",
 "word_target": "", "definition_target": "", "example_target": "",
 "reasons": []}
rarity runs from 1 (very common) to 5 (very rare); confidence runs from 0 to 1.
word_target, definition_target and example_target must be written in %[1]s.
Set accept to false for proper nouns, abbreviations, slang and misspellings.`, language, word)
}
