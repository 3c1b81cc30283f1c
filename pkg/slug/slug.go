package slug

import (
	"strings"
	"unicode"
)

// Make converts an arbitrary string into a lowercase, hyphen-separated,
// URL- and filename-safe slug. ASCII letters and digits pass through, common
// Latin diacritics fold to their ASCII equivalents, and every other run of
// characters collapses into a single hyphen.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastWasSep := true // avoid a leading hyphen
	for _, r := range s {
		r = unicode.ToLower(r)

		if folded, ok := diacriticMap[r]; ok {
			r = folded
		}

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastWasSep = false
			continue
		}

		if !lastWasSep {
			b.WriteByte('-')
			lastWasSep = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// diacriticMap maps common Latin diacritics to ASCII equivalents. Covers the
// major European languages, not every Unicode range.
var diacriticMap = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a', 'ā': 'a', 'ă': 'a', 'ą': 'a',
	'ç': 'c', 'ć': 'c', 'č': 'c',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e', 'ė': 'e', 'ę': 'e', 'ě': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i', 'į': 'i',
	'ñ': 'n', 'ń': 'n', 'ň': 'n',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o', 'ø': 'o', 'ō': 'o', 'ő': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u', 'ū': 'u', 'ů': 'u', 'ű': 'u', 'ų': 'u',
	'ý': 'y', 'ÿ': 'y',
	'ś': 's', 'š': 's', 'ß': 's',
	'ź': 'z', 'ż': 'z', 'ž': 'z',
	'ł': 'l', 'đ': 'd', 'ð': 'd', 'þ': 't', 'ř': 'r', 'ť': 't', 'ğ': 'g',
}
