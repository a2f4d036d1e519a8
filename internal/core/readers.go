package core

// readers.go normalizes raw CSV bytes to clean UTF-8 before parsing.
//
// Spreadsheet exports from Windows tools commonly carry a byte-order mark,
// are saved as UTF-16, or use a legacy single-byte code page. The CSV reader
// only understands UTF-8, so text goes through NormalizeText first:
//
//   - UTF-16 with a BOM is transcoded to UTF-8
//   - a UTF-8 BOM (0xEF 0xBB 0xBF) is dropped
//   - invalid UTF-8 is decoded with the fallback charset, if one is set,
//     or has each bad sequence replaced with U+FFFD

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// LookupCharset resolves a charset label such as "windows-1252" or
// "iso-8859-1". An empty name returns a nil encoding and no error.
func LookupCharset(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("encoding error: unknown charset %q", name)
	}
	return enc, nil
}

// NormalizeText returns data as valid UTF-8 without a byte-order mark.
// fallback decodes input that is not valid UTF-8; nil means replace the
// invalid sequences instead.
func NormalizeText(data []byte, fallback encoding.Encoding) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			return nil, wrapf(ErrParse, "utf-16 decode: %v", err)
		}
		return bytes.TrimPrefix(out, bomUTF8), nil

	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	}

	if isAllASCII(data) || utf8.Valid(data) {
		return data, nil
	}

	if fallback != nil {
		out, err := fallback.NewDecoder().Bytes(data)
		if err == nil {
			return out, nil
		}
	}

	return bytes.ToValidUTF8(data, []byte(string(utf8.RuneError))), nil
}

// isAllASCII returns true if all bytes are ASCII (< 128).
// Most CSV data is ASCII, so this skips the full validation pass.
func isAllASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
