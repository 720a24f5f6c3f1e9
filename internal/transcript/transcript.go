// Package transcript normalizes recognized speech text for command matching
// and document appends.
package transcript

import (
	"strings"
	"unicode"
)

// Normalize lowercases and trims a recognizer hypothesis for phrase matching.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// ContainsPhrase reports whether the normalized text contains the normalized
// phrase. Substring containment keeps command detection robust to recognizer
// artifacts surrounding the phrase.
func ContainsPhrase(text, phrase string) bool {
	phrase = Normalize(phrase)
	if phrase == "" {
		return false
	}
	return strings.Contains(Normalize(text), phrase)
}

// Append joins new dictated text onto existing content with exactly one
// separating space when the content is non-empty and the text does not already
// begin with whitespace.
func Append(content, text string) string {
	if text == "" {
		return content
	}
	if content == "" {
		return text
	}
	if startsWithSpace(text) {
		return content + text
	}
	return content + " " + text
}

// WordCount counts whitespace-delimited words in content.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

func startsWithSpace(text string) bool {
	for _, r := range text {
		return unicode.IsSpace(r)
	}
	return false
}
