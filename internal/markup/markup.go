// Package markup holds the small text transforms applied to note HTML:
// tag stripping, truncation and word/character counts.
package markup

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes everything that looks like a markup tag. Entities are
// left as written.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// Truncate returns at most n characters of s without splitting a rune.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// PlainText strips tags from html and truncates the result to n characters.
func PlainText(html string, n int) string {
	return Truncate(StripTags(html), n)
}

// Counts is the word and character tally shown under the editor.
type Counts struct {
	Words      int `json:"words"`
	Characters int `json:"characters"`
}

// Count tallies whitespace-delimited words and characters of the text left
// after stripping tags from html.
func Count(html string) Counts {
	text := StripTags(html)
	return Counts{
		Words:      len(strings.Fields(text)),
		Characters: utf8.RuneCountInString(text),
	}
}
