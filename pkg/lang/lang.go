// Package lang tags documents with a best-effort language guess for the
// run-audit trail. Detection never affects processing; an unrecognized
// language is recorded as unknown and the document goes through anyway.
package lang

import (
	"github.com/pemistahl/lingua-go"
)

// Unknown is recorded when no candidate language is confident enough.
const Unknown = "unknown"

// sampleLength bounds how much text is fed to the detector. Language is
// obvious well before this point and detection cost grows with input size.
const sampleLength = 512

// Detector wraps a lingua detector restricted to the languages the corpus
// realistically contains.
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector builds a detector. Construction loads language models and is
// not cheap; build one per process and reuse it.
func NewDetector() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Portuguese,
		).
		Build()
	return &Detector{detector: detector}
}

// Detect returns the language name for text, or Unknown.
func (d *Detector) Detect(text string) string {
	runes := []rune(text)
	if len(runes) > sampleLength {
		text = string(runes[:sampleLength])
	}

	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return Unknown
	}
	return language.String()
}
