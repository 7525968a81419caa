package morse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	t.Run("text to morse", func(t *testing.T) {
		before := time.Now().UTC()
		res, err := Translate(Request{Text: "sos", Direction: TextToMorseDirection})
		require.NoError(t, err)

		assert.Equal(t, "sos", res.Original)
		assert.Equal(t, "... --- ...", res.Translated)
		assert.Equal(t, TextToMorseDirection, res.Direction)
		assert.False(t, res.Timestamp.Before(before))
		assert.Equal(t, time.UTC, res.Timestamp.Location())
	})

	t.Run("morse to text", func(t *testing.T) {
		res, err := Translate(Request{Morse: ".... ..", Direction: MorseToTextDirection})
		require.NoError(t, err)
		assert.Equal(t, ".... ..", res.Original)
		assert.Equal(t, "HI", res.Translated)
		assert.Equal(t, MorseToTextDirection, res.Direction)
	})

	t.Run("reads only the field for its direction", func(t *testing.T) {
		_, err := Translate(Request{Morse: "...", Direction: TextToMorseDirection})
		assert.ErrorIs(t, err, ErrMissingInput)

		_, err = Translate(Request{Text: "SOS", Direction: MorseToTextDirection})
		assert.ErrorIs(t, err, ErrMissingInput)
	})

	t.Run("dispatch validation", func(t *testing.T) {
		_, err := Translate(Request{Text: "HELLO€", Direction: TextToMorseDirection})
		assert.ErrorIs(t, err, ErrUnsupportedCharacters)

		_, err = Translate(Request{Morse: "abc", Direction: MorseToTextDirection})
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("syntactically valid but undecodable morse", func(t *testing.T) {
		_, err := Translate(Request{Morse: "...... ......", Direction: MorseToTextDirection})
		assert.ErrorIs(t, err, ErrInvalidMorseCode)
	})

	t.Run("unknown direction", func(t *testing.T) {
		_, err := Translate(Request{Text: "SOS", Direction: "sideways"})
		assert.ErrorIs(t, err, ErrInvalidDirection)

		_, err = Translate(Request{Text: "SOS"})
		assert.ErrorIs(t, err, ErrInvalidDirection)
	})
}
