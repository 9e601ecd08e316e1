// Package title normalizes titles coming from different sources so that they
// can be compared, and extracts the year and quality markers sources embed in them.
//
// Normalization is Turkish-aware: the text is lowercased with Turkish casing
// rules and every character outside the Turkish alphabet, digits and
// whitespace becomes a separator. The dotless ı is folded to i so that
// "BREAKING" and "Breaking" normalize to the same token.
package title

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the similarity at which two titles are considered the same content.
const DefaultThreshold = 0.7

var (
	idStrip = regexp.MustCompile(`[^a-z0-9_]+`)

	yearPattern    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	yearMarker     = regexp.MustCompile(`\s*\(?\b(19|20)\d{2}\b\)?\s*`)
	qualityPattern = regexp.MustCompile(`(?i)\b(4K|2160p|1080p|720p|480p|HD|FHD|UHD)\b`)
	spaces         = regexp.MustCompile(`\s+`)
)

var stopWords = lo.SliceToMap([]string{
	"ve", "veya", "ile", "için", "bu", "şu", "o", "bir",
	"iki", "üç", "dört", "beş", "altı", "yedi", "sekiz", "dokuz", "on",
	"yıl", "yılı", "sezon", "bölüm", "film", "dizi", "seri",
	"türkçe", "altyazı", "dublaj", "hd", "full", "izle", "izlesene",
	"the", "a", "an", "and", "or", "for", "of", "in", "on", "at", "to", "with",
	"season", "episode", "movie", "series", "tv", "show", "watch",
}, func(w string) (string, struct{}) {
	return fold(w), struct{}{}
})

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == 'ç', r == 'ğ', r == 'ö', r == 'ş', r == 'ü':
		return true
	default:
		return unicode.IsSpace(r)
	}
}

// fold lowercases s with Turkish rules and turns every rune outside the
// allowed alphabet into a space. Casers keep state, so each call builds its own.
func fold(s string) string {
	s = cases.Lower(language.Turkish).String(norm.NFC.String(s))

	return strings.Map(func(r rune) rune {
		switch {
		case r == 'ı':
			return 'i'
		case allowed(r):
			return r
		default:
			return ' '
		}
	}, s)
}

// Tokens returns the normalized tokens of s in their original order, duplicates included.
func Tokens(s string) []string {
	return lo.Filter(strings.Fields(fold(s)), func(token string, _ int) bool {
		if len([]rune(token)) <= 1 {
			return false
		}
		_, stop := stopWords[token]
		return !stop
	})
}

// Normalize returns the matching form of s: folded, filtered tokens joined by single spaces.
// It is idempotent and never introduces tokens that were not in s.
func Normalize(s string) string {
	return strings.Join(Tokens(s), " ")
}

// Similarity is the Jaccard index of the token sets of a and b.
// Equal normalized forms, including two empty ones, have similarity 1.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1
	}

	ta, tb := lo.Uniq(strings.Fields(na)), lo.Uniq(strings.Fields(nb))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inB := lo.SliceToMap(tb, func(t string) (string, struct{}) { return t, struct{}{} })
	common := lo.CountBy(ta, func(t string) bool {
		_, ok := inB[t]
		return ok
	})

	return float64(common) / float64(len(ta)+len(tb)-common)
}

// IsMatch reports whether a and b are at least threshold similar.
func IsMatch(a, b string, threshold float64) bool {
	return Similarity(a, b) >= threshold
}

// GenerateID derives a stable identifier from s containing only [a-z0-9_].
// Titles that normalize to nothing yield the empty id.
func GenerateID(s string) string {
	return idStrip.ReplaceAllString(strings.ReplaceAll(Normalize(s), " ", "_"), "")
}

// ExtractYear returns the first year between 1900 and 2099 found in s.
func ExtractYear(s string) (int, bool) {
	match := yearPattern.FindString(s)
	if match == "" {
		return 0, false
	}

	year := 0
	for _, r := range match {
		year = year*10 + int(r-'0')
	}
	return year, true
}

// ExtractQuality returns the first quality marker in s, uppercased.
func ExtractQuality(s string) (string, bool) {
	match := qualityPattern.FindString(s)
	if match == "" {
		return "", false
	}
	return strings.ToUpper(match), true
}

// CleanTitleFromYear removes year markers such as "2008" or "(2008)".
func CleanTitleFromYear(s string) string {
	return collapse(yearMarker.ReplaceAllString(s, " "))
}

// CleanTitleFromQuality removes quality markers such as "1080p" or "HD".
func CleanTitleFromQuality(s string) string {
	return collapse(qualityPattern.ReplaceAllString(s, " "))
}

// Clean removes both year and quality markers, giving the display form of a title.
func Clean(s string) string {
	return CleanTitleFromQuality(CleanTitleFromYear(s))
}

func collapse(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
