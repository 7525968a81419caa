// Package morse translates between plain text and International Morse Code.
//
// Encoded text is a sequence of space-separated tokens, one per character,
// with "/" standing for a space between words. Every function in this package
// is pure and safe for concurrent use.
package morse

import (
	"strings"
	"unicode"
)

// TextToMorse encodes input case-insensitively. The whole call fails on the
// first rune that has no pattern.
func TextToMorse(input string) (string, error) {
	if input == "" {
		return "", ErrInvalidInput
	}

	upper := strings.ToUpper(input)
	tokens := make([]string, 0, len(upper))
	for _, r := range upper {
		pattern, ok := forward[r]
		if !ok {
			return "", &UnsupportedCharacterError{Char: r}
		}
		tokens = append(tokens, pattern)
	}
	return strings.Join(tokens, " "), nil
}

// MorseToText decodes space-separated tokens. Runs of whitespace between
// tokens are tolerated. The result is always upper case.
func MorseToText(input string) (string, error) {
	tokens := strings.Fields(input)
	if len(tokens) == 0 {
		return "", ErrInvalidInput
	}

	var b strings.Builder
	b.Grow(len(tokens))
	for _, token := range tokens {
		r, ok := reverse[token]
		if !ok {
			return "", &InvalidMorseCodeError{Token: token}
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// ValidateMorseCode reports whether input is made only of dots, dashes,
// slashes and whitespace. It does not check that the tokens decode.
func ValidateMorseCode(input string) bool {
	if input == "" {
		return false
	}
	for _, r := range input {
		switch {
		case r == '.', r == '-', r == '/':
		case unicode.IsSpace(r):
		default:
			return false
		}
	}
	return true
}

// ValidateText reports whether every rune of input can be encoded.
func ValidateText(input string) bool {
	if input == "" {
		return false
	}
	for _, r := range strings.ToUpper(input) {
		if _, ok := forward[r]; !ok {
			return false
		}
	}
	return true
}

// SupportedCharacters lists the encodable characters, excluding space, in
// table order: letters, digits, then punctuation.
func SupportedCharacters() []string {
	chars := make([]string, 0, len(symbols)-1)
	for _, s := range symbols {
		if s.char == ' ' {
			continue
		}
		chars = append(chars, string(s.char))
	}
	return chars
}
