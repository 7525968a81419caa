package morse

// WordSeparator is the token a space encodes to.
const WordSeparator = "/"

type symbol struct {
	char    rune
	pattern string
}

// symbols is the International Morse table in definition order. The space
// entry stays last so SupportedCharacters can skip it.
var symbols = []symbol{
	{'A', ".-"}, {'B', "-..."}, {'C', "-.-."}, {'D', "-.."}, {'E', "."},
	{'F', "..-."}, {'G', "--."}, {'H', "...."}, {'I', ".."}, {'J', ".---"},
	{'K', "-.-"}, {'L', ".-.."}, {'M', "--"}, {'N', "-."}, {'O', "---"},
	{'P', ".--."}, {'Q', "--.-"}, {'R', ".-."}, {'S', "..."}, {'T', "-"},
	{'U', "..-"}, {'V', "...-"}, {'W', ".--"}, {'X', "-..-"}, {'Y', "-.--"},
	{'Z', "--.."},

	{'0', "-----"}, {'1', ".----"}, {'2', "..---"}, {'3', "...--"}, {'4', "....-"},
	{'5', "....."}, {'6', "-...."}, {'7', "--..."}, {'8', "---.."}, {'9', "----."},

	{'.', ".-.-.-"}, {',', "--..--"}, {'?', "..--.."}, {'\'', ".----."}, {'!', "-.-.--"},
	{'/', "-..-."}, {'(', "-.--."}, {')', "-.--.-"}, {'&', ".-..."}, {':', "---..."},
	{';', "-.-.-."}, {'=', "-...-"}, {'+', ".-.-."}, {'-', "-....-"}, {'_', "..--.-"},
	{'"', ".-..-."}, {'$', "...-..-"}, {'@', ".--.-."},

	{' ', WordSeparator},
}

var (
	forward = make(map[rune]string, len(symbols))
	reverse = make(map[string]rune, len(symbols))
)

func init() {
	for _, s := range symbols {
		if _, dup := forward[s.char]; dup {
			panic("morse: duplicate character " + string(s.char))
		}
		if _, dup := reverse[s.pattern]; dup {
			panic("morse: duplicate pattern " + s.pattern)
		}
		forward[s.char] = s.pattern
		reverse[s.pattern] = s.char
	}
}
