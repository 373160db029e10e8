// Package speech holds the contract shared with the on-device speech
// collaborators: which languages they handle, the locale each one speaks,
// and how recognition failures are reported to the user.
package speech

import "fmt"

const defaultLocale = "en-US"

// Languages lists the display names callers may pick from, in menu order.
var Languages = []string{
	"English",
	"Korean",
	"Japanese",
	"Chinese",
	"Spanish",
	"French",
	"German",
	"Italian",
	"Portuguese",
	"Russian",
}

var locales = map[string]string{
	"English":    "en-US",
	"Korean":     "ko-KR",
	"Japanese":   "ja-JP",
	"Chinese":    "zh-CN",
	"Spanish":    "es-ES",
	"French":     "fr-FR",
	"German":     "de-DE",
	"Italian":    "it-IT",
	"Portuguese": "pt-PT",
	"Russian":    "ru-RU",
}

// LocaleFor returns the BCP-47 tag for a language name. Unknown names fall
// back to en-US.
func LocaleFor(language string) string {
	if tag, ok := locales[language]; ok {
		return tag
	}
	return defaultLocale
}

// IsSupported reports whether language is one of Languages.
func IsSupported(language string) bool {
	_, ok := locales[language]
	return ok
}

// RecognitionCode identifies a speech recognizer failure.
type RecognitionCode string

const (
	CodeAudio                   RecognitionCode = "audio"
	CodeClient                  RecognitionCode = "client"
	CodeInsufficientPermissions RecognitionCode = "insufficient_permissions"
	CodeNetwork                 RecognitionCode = "network"
	CodeNetworkTimeout          RecognitionCode = "network_timeout"
	CodeNoMatch                 RecognitionCode = "no_match"
	CodeRecognizerBusy          RecognitionCode = "recognizer_busy"
	CodeServer                  RecognitionCode = "server"
	CodeSpeechTimeout           RecognitionCode = "speech_timeout"
	CodeNoResult                RecognitionCode = "no_result"
)

var recognitionMessages = map[RecognitionCode]string{
	CodeAudio:                   "Audio recording error",
	CodeClient:                  "Client side error",
	CodeInsufficientPermissions: "Insufficient permissions",
	CodeNetwork:                 "Network error",
	CodeNetworkTimeout:          "Network timeout",
	CodeNoMatch:                 "No speech input",
	CodeRecognizerBusy:          "RecognitionService busy",
	CodeServer:                  "Server error",
	CodeSpeechTimeout:           "No speech input",
}

// RecognitionError is reported by the speech-capture side. It is shown to
// the user as-is and never becomes a turn result.
type RecognitionError struct {
	Code RecognitionCode
}

func (e *RecognitionError) Error() string {
	if e.Code == CodeNoResult {
		return "No speech recognized"
	}
	msg, ok := recognitionMessages[e.Code]
	if !ok {
		msg = "Unknown error"
	}
	return fmt.Sprintf("Speech recognition error: %s", msg)
}
