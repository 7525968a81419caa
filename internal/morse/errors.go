package morse

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when an encode or decode call gets empty input.
	ErrInvalidInput = errors.New("input must be a non-empty string")
	// ErrUnsupportedCharacter is matched by *UnsupportedCharacterError.
	ErrUnsupportedCharacter = errors.New("unsupported character")
	// ErrInvalidMorseCode is matched by *InvalidMorseCodeError.
	ErrInvalidMorseCode = errors.New("invalid morse code")

	// Translate rejects requests with these before calling the codec.
	ErrMissingInput          = errors.New("missing input")
	ErrUnsupportedCharacters = errors.New("text contains unsupported characters")
	ErrInvalidFormat         = errors.New("invalid morse code format")
	ErrInvalidDirection      = errors.New("invalid direction")
)

// UnsupportedCharacterError names the first rune with no Morse pattern.
type UnsupportedCharacterError struct {
	Char rune
}

func (e *UnsupportedCharacterError) Error() string {
	return fmt.Sprintf("unsupported character: %q", string(e.Char))
}

func (e *UnsupportedCharacterError) Unwrap() error { return ErrUnsupportedCharacter }

// InvalidMorseCodeError names the first token that decodes to nothing.
type InvalidMorseCodeError struct {
	Token string
}

func (e *InvalidMorseCodeError) Error() string {
	return fmt.Sprintf("invalid morse code: %q", e.Token)
}

func (e *InvalidMorseCodeError) Unwrap() error { return ErrInvalidMorseCode }

// Code maps a codec error to a stable upper-case code for API responses.
// Errors from outside this package map to "INTERNAL".
func Code(err error) string {
	switch {
	case err == nil:
		return "OK"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrMissingInput):
		return "MISSING_INPUT"
	case errors.Is(err, ErrUnsupportedCharacter), errors.Is(err, ErrUnsupportedCharacters):
		return "UNSUPPORTED_CHARACTERS"
	case errors.Is(err, ErrInvalidFormat):
		return "INVALID_FORMAT"
	case errors.Is(err, ErrInvalidMorseCode):
		return "INVALID_MORSE_CODE"
	case errors.Is(err, ErrInvalidDirection):
		return "INVALID_DIRECTION"
	default:
		return "INTERNAL"
	}
}
