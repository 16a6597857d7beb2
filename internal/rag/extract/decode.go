package extract

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var errUndecodable = errors.New("could not decode text file")

// decodeText tries UTF-8, then UTF-16 with a byte order mark, then Latin-1.
// ASCII is covered by the UTF-8 attempt. UTF-16 without a BOM is not guessed
// since any even-length Latin-1 file would decode as UTF-16.
func decodeText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	if text, ok := decodeUTF16(content); ok {
		return text, nil
	}
	text, err := decodeWith(charmap.ISO8859_1, content)
	if err != nil {
		return "", errUndecodable
	}
	return text, nil
}

func decodeUTF16(content []byte) (string, bool) {
	if len(content)%2 != 0 {
		return "", false
	}
	text, err := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), content)
	if err != nil || strings.ContainsRune(text, utf8.RuneError) {
		return "", false
	}
	return text, true
}

func decodeWith(enc encoding.Encoding, content []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
