// Package langdetect adapts a trigram language identifier to the resolver's
// detector contract.
package langdetect

import "github.com/abadojack/whatlanggo"

// Whatlang detects the language of free text using whatlanggo.
type Whatlang struct{}

// New returns a ready detector.
func New() *Whatlang {
	return &Whatlang{}
}

// Detect returns the best-guess ISO 639-1 code for text. ok is false when
// detection is unreliable or the script yields no usable code; callers treat
// that as "no signal".
func (d *Whatlang) Detect(text string) (string, bool) {
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" || !info.IsReliable() {
		return "", false
	}
	return code, true
}
