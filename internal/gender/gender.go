// Package gender infers a presumed gender from Icelandic patronymic name
// endings. It is a soft bias signal for distractor selection, never ground
// truth.
package gender

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Gender string

const (
	Female  Gender = "female"
	Male    Gender = "male"
	Unknown Gender = ""
)

// stripMarks decomposes and drops combining marks so that "dóttir" and
// "dottir" compare equal.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Classify guesses a gender from the name's suffix: "-dóttir" is female,
// "-son" is male, anything else is unknown.
func Classify(name string) Gender {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	switch {
	case strings.HasSuffix(folded, "dottir"):
		return Female
	case strings.HasSuffix(folded, "son"):
		return Male
	default:
		return Unknown
	}
}
