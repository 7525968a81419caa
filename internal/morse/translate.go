package morse

import "time"

// Direction selects which way Translate converts.
type Direction string

const (
	TextToMorseDirection Direction = "text-to-morse"
	MorseToTextDirection Direction = "morse-to-text"
)

// Request carries a payload for one direction. Only the field matching
// Direction is read.
type Request struct {
	Text      string    `json:"text,omitempty"`
	Morse     string    `json:"morse,omitempty"`
	Direction Direction `json:"direction"`
}

// Translation is the result of a successful Translate call.
type Translation struct {
	Original   string    `json:"original"`
	Translated string    `json:"translated"`
	Direction  Direction `json:"direction"`
	Timestamp  time.Time `json:"timestamp"`
}

// Translate validates req for its direction and dispatches to the codec.
// Validation failures are reported before any encoding work is done.
func Translate(req Request) (Translation, error) {
	var (
		original   string
		translated string
		err        error
	)

	switch req.Direction {
	case TextToMorseDirection:
		original = req.Text
		if original == "" {
			return Translation{}, ErrMissingInput
		}
		if !ValidateText(original) {
			return Translation{}, ErrUnsupportedCharacters
		}
		translated, err = TextToMorse(original)
	case MorseToTextDirection:
		original = req.Morse
		if original == "" {
			return Translation{}, ErrMissingInput
		}
		if !ValidateMorseCode(original) {
			return Translation{}, ErrInvalidFormat
		}
		translated, err = MorseToText(original)
	default:
		return Translation{}, ErrInvalidDirection
	}
	if err != nil {
		return Translation{}, err
	}

	return Translation{
		Original:   original,
		Translated: translated,
		Direction:  req.Direction,
		Timestamp:  time.Now().UTC(),
	}, nil
}
