package chunker

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/chunkgrep/pkg/types"
)

func writeTemp(t *testing.T, name string, content []byte) types.FileHandle {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return types.FileHandle{Path: path, Size: int64(len(content))}
}

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return lines
}

func concatLines(chunks []*types.Chunk) []string {
	var out []string
	for _, c := range chunks {
		out = append(out, c.Lines...)
	}
	return out
}

func TestReadAll_TwentyFiveHundredLines(t *testing.T) {
	lines := numberedLines(2500)
	fh := writeTemp(t, "big.txt", []byte(strings.Join(lines, "\n")+"\n"))

	chunks, err := ReadAll(fh, 1000)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Len(t, chunks[0].Lines, 1000)
	assert.Len(t, chunks[1].Lines, 1000)
	assert.Len(t, chunks[2].Lines, 500)

	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 1001, chunks[1].StartLine)
	assert.Equal(t, 2001, chunks[2].StartLine)
	assert.Equal(t, 2500, chunks[2].EndLine())

	for i, c := range chunks {
		assert.Equal(t, i, c.Seq)
		assert.Equal(t, i == 2, c.Last, "only the final chunk is marked last")
		require.NoError(t, c.Validate())
	}

	assert.Equal(t, "line 1001", chunks[1].Lines[0])
}

func TestReadAll_RoundTrip(t *testing.T) {
	contents := map[string]string{
		"empty":            "",
		"single newline":   "\n",
		"no final newline": "alpha\nbeta\ngamma",
		"final newline":    "alpha\nbeta\ngamma\n",
		"blank lines":      "\n\n\nx\n\n",
		"crlf":             "one\r\ntwo\r\nthree\r\n",
		"mixed endings":    "one\r\ntwo\nthree\r\nfour",
		"cr at eof":        "a\r\nb\r",
		"lone cr":          "foo\r",
		"long line":        strings.Repeat("z", 200000) + "\nshort\n",
		"exact multiple":   strings.Join(numberedLines(12), "\n") + "\n",
	}

	for name, content := range contents {
		for _, size := range []int{1, 2, 3, 5, 1000} {
			t.Run(fmt.Sprintf("%s/chunk=%d", name, size), func(t *testing.T) {
				fh := writeTemp(t, "f.txt", []byte(content))

				chunks, err := ReadAll(fh, size)
				require.NoError(t, err)

				expected := expectedLines(content)
				assert.Equal(t, expected, concatLines(chunks))

				next := 1
				for i, c := range chunks {
					assert.LessOrEqual(t, len(c.Lines), size)
					assert.NotEmpty(t, c.Lines)
					assert.Equal(t, next, c.StartLine)
					next += len(c.Lines)
					assert.Equal(t, i == len(chunks)-1, c.Last)
				}
			})
		}
	}
}

// expectedLines mirrors the documented splitting rules independently of the reader
func expectedLines(content string) []string {
	if content == "" {
		return nil
	}
	terminated := strings.HasSuffix(content, "\n")
	content = strings.TrimSuffix(content, "\n")
	parts := strings.Split(content, "\n")
	for i, p := range parts {
		if i < len(parts)-1 || terminated {
			parts[i] = strings.TrimSuffix(p, "\r")
		}
	}
	return parts
}

func TestReader_TrailingCarriageReturnWithoutNewline(t *testing.T) {
	fh := writeTemp(t, "cr.txt", []byte("a\r\nb\r"))

	chunks, err := ReadAll(fh, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b\r"}, concatLines(chunks))

	fh = writeTemp(t, "lone.txt", []byte("foo\r"))
	chunks, err = ReadAll(fh, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo\r"}, concatLines(chunks))
}

func TestReader_StartOffsets(t *testing.T) {
	fh := writeTemp(t, "offsets.txt", []byte("ab\ncde\r\nf\ng\n"))

	chunks, err := ReadAll(fh, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, int64(0), chunks[0].StartOffset)
	assert.Equal(t, int64(len("ab\ncde\r\n")), chunks[1].StartOffset)
	assert.Equal(t, []string{"f", "g"}, chunks[1].Lines)
}

func TestReader_NextAfterEOF(t *testing.T) {
	fh := writeTemp(t, "two.txt", []byte("a\nb\n"))

	r, err := Open(fh, 10)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	chunk, err := r.Next()
	require.NoError(t, err)
	assert.True(t, chunk.Last)

	for i := 0; i < 3; i++ {
		_, err = r.Next()
		assert.ErrorIs(t, err, io.EOF)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(types.FileHandle{Path: filepath.Join(t.TempDir(), "missing.txt")}, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrIo)
	assert.False(t, types.IsFatal(err))
}

func TestOpen_Directory(t *testing.T) {
	dir := t.TempDir()
	r, err := Open(types.FileHandle{Path: dir}, 10)
	if err != nil {
		assert.ErrorIs(t, err, types.ErrIo)
		return
	}
	defer func() { _ = r.Close() }()

	_, err = r.Next()
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
	assert.ErrorIs(t, err, types.ErrIo)
}

func TestOpen_InvalidChunkSize(t *testing.T) {
	fh := writeTemp(t, "a.txt", []byte("a\n"))
	_, err := Open(fh, 0)
	assert.ErrorIs(t, err, types.ErrConfig)
}

func TestReader_InvalidUTF8(t *testing.T) {
	content := []byte("fine\ncaf\xe9 latin1\nalso fine\n")
	fh := writeTemp(t, "latin1.txt", content)

	r, err := Open(fh, 10)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	chunk, err := r.Next()
	require.NoError(t, err)
	require.Len(t, chunk.Lines, 3)
	assert.Equal(t, "caf\xe9 latin1", chunk.Lines[1], "raw bytes are preserved")

	warnings := r.Warnings()
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], types.ErrDecode)
	assert.Contains(t, warnings[0].Error(), "line 2")
}

func TestReader_UTF8BOM(t *testing.T) {
	fh := writeTemp(t, "bom.txt", append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello\nworld\n")...))

	r, err := Open(fh, 10)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	assert.Equal(t, EncodingUTF8BOM, r.Encoding())
	chunk, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, chunk.Lines)
	assert.Empty(t, r.Warnings())
}

func utf16(order string, s string) []byte {
	var out []byte
	if order == "le" {
		out = append(out, 0xFF, 0xFE)
	} else {
		out = append(out, 0xFE, 0xFF)
	}
	for _, r := range s {
		hi, lo := byte(r>>8), byte(r)
		if order == "le" {
			out = append(out, lo, hi)
		} else {
			out = append(out, hi, lo)
		}
	}
	return out
}

func TestReader_UTF16(t *testing.T) {
	tests := []struct {
		order string
		want  Encoding
	}{
		{"le", EncodingUTF16LE},
		{"be", EncodingUTF16BE},
	}

	for _, tt := range tests {
		t.Run(tt.order, func(t *testing.T) {
			fh := writeTemp(t, "wide.txt", utf16(tt.order, "Zażółć\r\nsecond\r\n"))

			r, err := Open(fh, 10)
			require.NoError(t, err)
			defer func() { _ = r.Close() }()

			assert.Equal(t, tt.want, r.Encoding())
			chunk, err := r.Next()
			require.NoError(t, err)
			assert.Equal(t, []string{"Zażółć", "second"}, chunk.Lines)
			assert.Empty(t, r.Warnings())
		})
	}
}

func TestDetectEncoding(t *testing.T) {
	assert.Equal(t, EncodingUTF8, detectEncoding(nil))
	assert.Equal(t, EncodingUTF8, detectEncoding([]byte("ab")))
	assert.Equal(t, EncodingUTF8BOM, detectEncoding([]byte{0xEF, 0xBB, 0xBF}))
	assert.Equal(t, EncodingUTF16LE, detectEncoding([]byte{0xFF, 0xFE}))
	assert.Equal(t, EncodingUTF16BE, detectEncoding([]byte{0xFE, 0xFF, 0x00}))
}

func BenchmarkReadAll(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.txt")
	content := strings.Join(numberedLines(100000), "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		b.Fatal(err)
	}
	fh := types.FileHandle{Path: path}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		chunks, err := ReadAll(fh, 1000)
		if err != nil {
			b.Fatal(err)
		}
		if len(chunks) != 100 {
			b.Fatalf("expected 100 chunks, got %d", len(chunks))
		}
	}
}
