package gotemplate

import (
	"strings"
	"unicode"

	"github.com/flosch/pongo2/v6"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func registerDefaultFilters() {
	defaults := map[string]pongo2.FilterFunction{
		"trim":     filterTrim,
		"humanize": filterHumanize,
		"idsafe":   filterIDSafe,
	}
	for name, fn := range defaults {
		if !pongo2.FilterExists(name) {
			_ = pongo2.RegisterFilter(name, fn)
		}
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func filterHumanize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(Humanize(in.String())), nil
}

func filterIDSafe(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(IDSafe(in.String())), nil
}

// Humanize turns a camelCase or snake_case key into capitalised words, for
// example "sleightOfHand" becomes "Sleight Of Hand".
func Humanize(key string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range strings.TrimSpace(key) {
		switch {
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(' ')
			prevLower = false
			continue
		case unicode.IsUpper(r) && prevLower:
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	words := strings.Fields(b.String())
	return cases.Title(language.English, cases.NoLower).String(strings.Join(words, " "))
}

// IDSafe maps a dotted binding path to a string usable as an element id.
func IDSafe(path string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(path))
}
