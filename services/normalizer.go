package services

import (
	"regexp"
	"strings"
)

var (
	// trailingWeightRange matches one or more " 16-18kg" tokens at the end.
	trailingWeightRange = regexp.MustCompile(`(?i)(?:\s+\d+-\d+kg)+$`)
	weightRange         = regexp.MustCompile(`(?i)\d+-\d+kg`)
)

// Canonicalize returns the grouping name of a shipping method: registered
// trademark glyphs and trailing weight ranges removed, whitespace collapsed,
// lower-cased. Canonicalize(Canonicalize(x)) == Canonicalize(x).
//
// Every Unicode space run becomes one ASCII space before the weight ranges
// are stripped, so the regexp only ever sees single ASCII separators.
func Canonicalize(name string) string {
	s := strings.ReplaceAll(name, "®", "")
	s = strings.Join(strings.Fields(s), " ")
	s = trailingWeightRange.ReplaceAllString(s, "")
	return strings.ToLower(s)
}

// HasWeightRange reports whether a method name carries an explicit weight
// band such as "16-18kg".
func HasWeightRange(name string) bool {
	return weightRange.MatchString(name)
}
