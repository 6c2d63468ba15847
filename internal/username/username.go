// Package username derives internal usernames for people imported from Trello.
package username

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PlaceholderPrefix marks generated Trello usernames such as "user8832".
const PlaceholderPrefix = "user"

// letters that do not decompose into an ASCII base plus combining marks
var transliterations = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "Æ", "ae", "ø", "o", "Ø", "o",
	"ł", "l", "Ł", "l", "đ", "d", "Đ", "d", "þ", "th", "Þ", "th",
	"œ", "oe", "Œ", "oe",
)

// MakeUsername replaces a placeholder username with a slug of the person's
// full name. Any other username is returned unchanged, as is a placeholder
// whose full name yields an empty slug.
func MakeUsername(username, fullName string) string {
	if !strings.HasPrefix(username, PlaceholderPrefix) {
		return username
	}
	if slug := Slugify(fullName); slug != "" {
		return slug
	}
	return username
}

// Slugify lowercases s, folds it to ASCII and joins alphanumeric runs with '-'.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, transliterations.Replace(s))
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
