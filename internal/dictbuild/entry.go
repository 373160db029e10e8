package dictbuild

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Entry is one accepted headword with its translation into the target
// language.
type Entry struct {
	Word             string  `json:"word" validate:"required,max=80"`
	Prefix           string  `json:"prefix" validate:"required"`
	Length           int     `json:"length" validate:"gt=0"`
	POS              string  `json:"pos" validate:"oneof=noun verb adjective adverb other"`
	DefinitionEN     string  `json:"definition_en" validate:"required"`
	ExampleEN        string  `json:"example_en"`
	WordTarget       string  `json:"word_target" validate:"required"`
	DefinitionTarget string  `json:"definition_target"`
	ExampleTarget    string  `json:"example_target"`
	TargetLang       string  `json:"target_lang" validate:"required"`
	Rarity           int     `json:"rarity" validate:"min=1,max=5"`
	Confidence       float64 `json:"confidence" validate:"gte=0,lte=1"`
	Score            float64 `json:"score" validate:"gte=0,lte=1"`
	CollectedAt      string  `json:"collected_at"`
}

// Metadata heads a finished dictionary file.
type Metadata struct {
	Title          string    `json:"title"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	ModelUsed      string    `json:"model_used"`
	CreatedAt      time.Time `json:"created_at"`
	TotalEntries   int       `json:"total_entries"`
}

// File is the on-disk dictionary layout served by the dictionary loader.
type File struct {
	Metadata Metadata `json:"metadata"`
	Entries  []Entry  `json:"entries"`
}

var entryValidator = newEntryValidator()

func newEntryValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(entryRules, Entry{})
	return v
}

// entryRules holds the cross-field checks that tags cannot express.
func entryRules(sl validator.StructLevel) {
	e := sl.Current().Interface().(Entry)
	if !strings.HasPrefix(e.Word, e.Prefix) {
		sl.ReportError(e.Prefix, "Prefix", "prefix", "word_prefix", "")
	}
	if e.Length != utf8.RuneCountInString(e.Word) {
		sl.ReportError(e.Length, "Length", "length", "word_length", "")
	}
	if e.WordTarget != "" && !inScript(e.TargetLang, e.WordTarget) {
		sl.ReportError(e.WordTarget, "WordTarget", "word_target", "script", e.TargetLang)
	}
}

// ValidateEntry reports why e cannot be written to a dictionary.
func ValidateEntry(e Entry) error {
	err := entryValidator.Struct(e)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid entry %q: %s", e.Word, strings.Join(msgs, ", "))
}

// inScript reports whether text contains at least one letter of the script
// the target language is written in.
func inScript(lang, text string) bool {
	tables, ok := scripts[lang]
	if !ok {
		tables = []*unicode.RangeTable{unicode.Latin}
	}
	for _, r := range text {
		for _, t := range tables {
			if unicode.Is(t, r) {
				return true
			}
		}
	}
	return false
}
