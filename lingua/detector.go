// Package lingua implements language detection using the lingua-go
// statistical detector.
package lingua

import (
	"strings"

	"github.com/pemistahl/lingua-go"
	"github.com/waypointhq/waypoint"
)

// Ensure Detector implements waypoint.LanguageDetector at compile time.
var _ waypoint.LanguageDetector = (*Detector)(nil)

// minTextLength is the shortest input worth running detection on.
// Shorter snippets produce unreliable results.
const minTextLength = 20

// candidateLanguages restricts detection to the languages travel content
// realistically appears in, which keeps the detector's memory footprint
// and ambiguity down.
var candidateLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Indonesian,
	lingua.Vietnamese,
	lingua.Thai,
	lingua.Japanese,
	lingua.Korean,
	lingua.Chinese,
	lingua.Russian,
	lingua.Arabic,
	lingua.Turkish,
}

// Detector identifies the language of page text.
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector creates a new Detector. Model loading is lazy, so
// construction is cheap.
func NewDetector() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(candidateLanguages...).
			Build(),
	}
}

// DetectLanguage returns the ISO 639-1 code of the text's language.
// Returns false when the input is too short or detection is unreliable.
func (d *Detector) DetectLanguage(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len(text) < minTextLength {
		return "", false
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
