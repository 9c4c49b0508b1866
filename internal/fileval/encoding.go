package fileval

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"unicode/utf8"
)

// Encoding is the text encoding Sniff detected.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF8BOM
	EncodingUTF16LE
	EncodingUTF16BE
	EncodingUTF32LE
	EncodingUTF32BE
	// EncodingUnknown is text that is not valid UTF-8, such as a legacy
	// code page.
	EncodingUnknown
	EncodingBinary
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF8BOM:
		return "utf-8-bom"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	case EncodingUTF32LE:
		return "utf-32le"
	case EncodingUTF32BE:
		return "utf-32be"
	case EncodingBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// boms is checked in order; the UTF-32LE mark starts with the UTF-16LE one.
var boms = []struct {
	mark []byte
	enc  Encoding
}{
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, EncodingUTF32LE},
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, EncodingUTF32BE},
	{[]byte{0xEF, 0xBB, 0xBF}, EncodingUTF8BOM},
	{[]byte{0xFF, 0xFE}, EncodingUTF16LE},
	{[]byte{0xFE, 0xFF}, EncodingUTF16BE},
}

const chunkSize = 32 * 1024

// DetectBOM returns the encoding named by data's byte order mark.
func DetectBOM(data []byte) (Encoding, bool) {
	for _, b := range boms {
		if bytes.HasPrefix(data, b.mark) {
			return b.enc, true
		}
	}
	return EncodingUTF8, false
}

// Sniff reads up to maxBytes of r (all of it when maxBytes <= 0) and
// classifies the text. A byte order mark other than UTF-8's decides on its
// own; otherwise a NUL byte means binary and invalid UTF-8 means
// EncodingUnknown. Code points split across reads are carried to the next
// chunk.
func Sniff(r io.Reader, maxBytes int64) (Encoding, error) {
	br := bufio.NewReaderSize(r, chunkSize)
	result := EncodingUTF8
	if head, _ := br.Peek(4); len(head) > 0 {
		if enc, ok := DetectBOM(head); ok {
			if enc != EncodingUTF8BOM {
				return enc, nil
			}
			result = enc
		}
	}

	buf := make([]byte, chunkSize)
	var carry []byte
	var total int64

	for maxBytes <= 0 || total < maxBytes {
		n, err := br.Read(buf)
		if n > 0 {
			total += int64(n)
			chunk := append(carry, buf[:n]...)
			carry = nil

			if bytes.IndexByte(chunk, 0) >= 0 {
				return EncodingBinary, nil
			}
			if trail := trailingIncomplete(chunk); trail > 0 {
				carry = bytes.Clone(chunk[len(chunk)-trail:])
				chunk = chunk[:len(chunk)-trail]
			}
			if !utf8.Valid(chunk) {
				return EncodingUnknown, nil
			}
		}
		if errors.Is(err, io.EOF) {
			// A partial code point at end of input is invalid; one cut by
			// the read limit is not judged.
			if len(carry) > 0 {
				return EncodingUnknown, nil
			}
			break
		}
		if err != nil {
			return EncodingUnknown, err
		}
	}
	return result, nil
}

// trailingIncomplete returns how many trailing bytes of data start a code
// point that is not complete yet, or 0.
func trailingIncomplete(data []byte) int {
	for i := 1; i <= 3 && i <= len(data); i++ {
		if utf8.RuneStart(data[len(data)-i]) {
			if utf8.FullRune(data[len(data)-i:]) {
				return 0
			}
			return i
		}
	}
	return 0
}
