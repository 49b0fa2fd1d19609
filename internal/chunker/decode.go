package chunker

import (
	"bufio"
	"errors"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is the text encoding detected from a file's byte order mark
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8" // No BOM; also the fallback for unknown text
	EncodingUTF8BOM Encoding = "utf-8-bom"
	EncodingUTF16LE Encoding = "utf-16le"
	EncodingUTF16BE Encoding = "utf-16be"
)

// bomSniffSize covers the longest BOM we recognise
const bomSniffSize = 3

// decodingReader wraps src so that it yields UTF-8. The BOM, if any, is
// consumed. Files without a BOM are passed through untouched.
func decodingReader(src io.Reader) (io.Reader, Encoding, error) {
	br := bufio.NewReader(src)

	head, err := br.Peek(bomSniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, EncodingUTF8, err
	}

	switch detectEncoding(head) {
	case EncodingUTF8BOM:
		_, _ = br.Discard(3)
		return br, EncodingUTF8BOM, nil
	case EncodingUTF16LE:
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()), EncodingUTF16LE, nil
	case EncodingUTF16BE:
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()), EncodingUTF16BE, nil
	default:
		return br, EncodingUTF8, nil
	}
}

func detectEncoding(head []byte) Encoding {
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		return EncodingUTF8BOM
	}
	if len(head) >= 2 {
		switch {
		case head[0] == 0xFF && head[1] == 0xFE:
			return EncodingUTF16LE
		case head[0] == 0xFE && head[1] == 0xFF:
			return EncodingUTF16BE
		}
	}
	return EncodingUTF8
}
