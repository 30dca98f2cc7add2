package extract

import (
	"unicode/utf8"

	"jobmatcher/internal/errors"

	"golang.org/x/text/encoding/charmap"
)

// DecodeText converts raw document bytes to a string, trying UTF-8 first
// and falling back to ISO-8859-1. The fallback accepts any byte sequence,
// so the error path only fires if the decoder itself fails.
func DecodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeDecodingFailed,
			"Could not decode the file under UTF-8 or ISO-8859-1", err)
	}
	return string(decoded), nil
}
