package chunker

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dshills/chunkgrep/pkg/types"
)

const (
	// readBufferSize is the bufio buffer used per open file
	readBufferSize = 64 * 1024
)

// Reader produces the line-aligned chunks of one file, lazily and in order
type Reader struct {
	file      types.FileHandle
	closer    io.Closer
	br        *bufio.Reader
	chunkSize int

	nextLine int   // 1-based number of the next line to read
	offset   int64 // Byte offset of the next line in the decoded stream
	seq      int
	done     bool
	pending  error // Error to return on the next call, after a partial chunk

	encoding    Encoding
	invalidLine int // First line that was not valid UTF-8, 0 if none
}

// Open opens the file behind fh and prepares to read chunks of at most
// chunkSize lines. Open failures are returned as KindIoError SearchErrors.
func Open(fh types.FileHandle, chunkSize int) (*Reader, error) {
	if chunkSize <= 0 {
		return nil, types.NewError(types.KindConfig, fh.Path, types.ErrInvalidChunkSize)
	}

	f, err := os.Open(fh.Path)
	if err != nil {
		return nil, types.NewError(types.KindIoError, fh.Path, fmt.Errorf("failed to open file: %w", err))
	}

	src, enc, err := decodingReader(f)
	if err != nil {
		_ = f.Close()
		return nil, types.NewError(types.KindIoError, fh.Path, fmt.Errorf("failed to read file: %w", err))
	}

	return &Reader{
		file:      fh,
		closer:    f,
		br:        bufio.NewReaderSize(src, readBufferSize),
		chunkSize: chunkSize,
		nextLine:  1,
		encoding:  enc,
	}, nil
}

// Next returns the next chunk, or io.EOF once the file is exhausted.
// A read error after some lines were gathered yields that partial chunk
// first and the error on the following call.
func (r *Reader) Next() (*types.Chunk, error) {
	if r.pending != nil {
		err := r.pending
		r.pending = nil
		r.done = true
		return nil, err
	}
	if r.done {
		return nil, io.EOF
	}

	chunk := &types.Chunk{
		File:        r.file,
		Seq:         r.seq,
		StartLine:   r.nextLine,
		StartOffset: r.offset,
		Lines:       make([]string, 0, min(r.chunkSize, 1024)),
	}

	for len(chunk.Lines) < r.chunkSize {
		raw, err := r.br.ReadString('\n')
		if len(raw) > 0 {
			r.offset += int64(len(raw))
			chunk.Lines = append(chunk.Lines, r.trimLine(raw))
			r.nextLine++
		}

		if err == nil {
			continue
		}

		r.done = true
		if !errors.Is(err, io.EOF) {
			readErr := types.NewError(types.KindIoError, r.file.Path, fmt.Errorf("read failed at line %d: %w", r.nextLine, err))
			if len(chunk.Lines) == 0 {
				return nil, readErr
			}
			r.pending = readErr
			r.done = false
		}
		break
	}

	if len(chunk.Lines) == 0 {
		return nil, io.EOF
	}

	if !r.done && r.pending == nil && r.atEOF() {
		r.done = true
	}
	chunk.Last = r.done || r.pending != nil
	r.seq++

	return chunk, nil
}

// atEOF peeks to find out whether the chunk just read is the last one
func (r *Reader) atEOF() bool {
	_, err := r.br.Peek(1)
	return errors.Is(err, io.EOF)
}

// trimLine strips the line terminator and records invalid UTF-8
func (r *Reader) trimLine(raw string) string {
	// A lone trailing \r at end of file is content, not a line ending
	line, ok := strings.CutSuffix(raw, "\n")
	if ok {
		line = strings.TrimSuffix(line, "\r")
	}
	if r.invalidLine == 0 && !utf8.ValidString(line) {
		r.invalidLine = r.nextLine
	}
	return line
}

// Warnings returns the decode problems seen so far. Lines that are not valid
// UTF-8 are still searched as raw bytes; the file gets a single warning.
func (r *Reader) Warnings() []error {
	if r.invalidLine == 0 {
		return nil
	}
	return []error{types.NewError(types.KindDecode, r.file.Path,
		fmt.Errorf("invalid UTF-8 starting at line %d, searched as raw bytes", r.invalidLine))}
}

// Offset returns the number of decoded bytes consumed so far
func (r *Reader) Offset() int64 {
	return r.offset
}

// Encoding reports the encoding detected when the file was opened
func (r *Reader) Encoding() Encoding {
	return r.encoding
}

// Close releases the underlying file
func (r *Reader) Close() error {
	return r.closer.Close()
}

// ReadAll returns every chunk of the file behind fh
func ReadAll(fh types.FileHandle, chunkSize int) ([]*types.Chunk, error) {
	r, err := Open(fh, chunkSize)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	var chunks []*types.Chunk
	for {
		chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			return chunks, nil
		}
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, chunk)
	}
}
