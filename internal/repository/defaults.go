package repository

import (
	"strings"
	"unicode"
)

// Initials returns the upper-cased first letter of each word in name,
// capped at two letters.
func Initials(name string) string {
	var letters []rune
	for _, word := range strings.Fields(name) {
		letters = append(letters, unicode.ToUpper([]rune(word)[0]))
		if len(letters) == 2 {
			break
		}
	}
	return string(letters)
}

// EmailLocalPart returns the part of an email address before the '@'.
func EmailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// appendUnique appends v to values unless it is already present.
func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}

// missingFrom returns the values of before that are not in after.
func missingFrom(before, after []string) []string {
	keep := make(map[string]bool, len(after))
	for _, v := range after {
		keep[v] = true
	}
	var out []string
	for _, v := range before {
		if !keep[v] {
			out = append(out, v)
		}
	}
	return out
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
