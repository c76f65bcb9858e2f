package dictionary

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// markerReplacer maps spoken-noise annotations onto the marker entries
// pronunciation dictionaries actually carry. Longer patterns come first so
// {laughter} cannot be half-eaten by {laugh}.
var markerReplacer = strings.NewReplacer(
	"{laughter}", "{LG}",
	"{laugh}", "{LG}",
	"{breath}", "{BR}",
	"{cough}", "{CG}",
	"{lipsmack}", "{LS}",
	"<noise>", "{NS}",
)

// punctReplacer strips punctuation that never appears in dictionary
// headwords. The triple hyphen is listed before the double so it cannot
// leave a stray hyphen behind; single hyphens survive for the compound
// split.
var punctReplacer = strings.NewReplacer(
	"---", "",
	"--", "",
	",", "",
	".", "",
	":", "",
	";", "",
	"!", "",
	"?", "",
	`"`, "",
	"%", "",
	"(", "",
	")", "",
)

var (
	compoundRe = regexp.MustCompile(`([A-Z]+)-([A-Z]+)`)
	upperCaser = cases.Upper(language.Und)
)

// Normalize runs transcript label text through the lookup pipeline and
// returns the tokens to check against the dictionary: trailing newlines
// dropped, noise annotations mapped to their marker forms, punctuation
// stripped, text upper-cased, hyphenated compounds split once, and the
// result tokenized on whitespace.
func Normalize(text string) []string {
	text = strings.TrimRight(text, "\n")
	text = markerReplacer.Replace(text)
	text = punctReplacer.Replace(text)
	text = upperCaser.String(text)
	text = compoundRe.ReplaceAllString(text, "$1 $2")
	return strings.Fields(text)
}
