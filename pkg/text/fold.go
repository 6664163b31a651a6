// Package text folds accented characters to their base letter so that
// searching "etape" finds "étape" and the other way around.
package text

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// accents is the fixed folding table. Runes missing from it are kept as is.
var accents = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ä': 'a', 'ã': 'a',
	'À': 'A', 'Á': 'A', 'Â': 'A', 'Ä': 'A', 'Ã': 'A',
	'ç': 'c', 'Ç': 'C',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'É': 'E', 'È': 'E', 'Ê': 'E', 'Ë': 'E',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'Í': 'I', 'Ì': 'I', 'Î': 'I', 'Ï': 'I',
	'ñ': 'n', 'Ñ': 'N',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'ö': 'o', 'õ': 'o',
	'Ó': 'O', 'Ò': 'O', 'Ô': 'O', 'Ö': 'O', 'Õ': 'O',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'Ú': 'U', 'Ù': 'U', 'Û': 'U', 'Ü': 'U',
	'ÿ': 'y',
}

var folder = runes.Map(func(r rune) rune {
	if base, ok := accents[r]; ok {
		return base
	}
	return r
})

// Fold replaces every accented rune of s found in the folding table by its
// base letter. It never fails: on a transform error s is returned untouched.
func Fold(s string) string {
	if s == "" {
		return s
	}
	folded, _, err := transform.String(folder, s)
	if err != nil {
		return s
	}
	return folded
}
