// Package chunker splits text files into line-aligned chunks for the worker pool.
//
// A Reader yields chunks lazily so that memory stays bounded regardless of
// file size. Each chunk holds at most the configured number of lines and
// carries the absolute 1-based number of its first line, so matches found in
// any chunk report the right line of the file.
//
// # Basic Usage
//
//	r, err := chunker.Open(fileHandle, 1000)
//	if err != nil {
//	    return err // KindIoError: the file is skipped
//	}
//	defer r.Close()
//
//	for {
//	    chunk, err := r.Next()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err // chunks returned so far remain valid
//	    }
//	    process(chunk)
//	}
//
// # Line Splitting
//
// Lines end at '\n'; a trailing '\r' is dropped so CRLF files behave like LF
// files. A final line without a newline is still a line. An empty file has no
// chunks. Concatenating the Lines of every chunk, in order, gives back the
// file's lines exactly.
//
// # Encodings
//
// The byte order mark decides the decoding:
//   - UTF-8 BOM: stripped
//   - UTF-16 LE/BE BOM: decoded to UTF-8 with golang.org/x/text
//   - no BOM: read as UTF-8
//
// Lines that are not valid UTF-8 are kept as raw bytes and still searched.
// The Reader records one decode warning per file (see Warnings) instead of
// failing, so a single malformed file never aborts a search.
package chunker
