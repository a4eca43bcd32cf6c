package upload

// In this file: payload abstractions and chunking.

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// ErrSourceNotFound is returned when a file payload points to a path that
// does not exist.  It is detected before any network call is made.
var ErrSourceNotFound = errors.New("media source not found")

// Chunk is one ordered slice of a payload's bytes, consumed by exactly one
// append call.  Indices form a contiguous sequence 0, 1, 2, ... matching the
// byte order of the payload.
type Chunk struct {
	Index int
	Data  []byte
}

// Payload is the origin of the bytes to be uploaded.  It is borrowed by the
// uploader for reading only and must not change for the duration of the
// upload.
type Payload interface {
	// Size returns the total payload size in bytes.
	Size() (int64, error)
	// Chunks returns a lazy, finite sequence of chunks of at most size bytes
	// each, covering the payload exactly once with no gaps or overlaps.  The
	// sequence is not safe for concurrent iteration; it is restartable only
	// by calling Chunks again.
	Chunks(size int) iter.Seq2[Chunk, error]
	// ContentType returns the caller-declared MIME type, or "" if none was
	// declared.
	ContentType() string
	// Filename returns the name used for MIME type inference, or "".
	Filename() string
}

// File is a payload backed by a file on disk.
type File struct {
	// Path is the location of the file to upload.
	Path string
	// DeclaredType optionally overrides MIME type inference from Path.
	DeclaredType string
}

var _ Payload = File{}

func (f File) Size() (int64, error) {
	fi, err := os.Stat(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrSourceNotFound, f.Path)
		}
		return 0, err
	}
	return fi.Size(), nil
}

func (f File) ContentType() string { return f.DeclaredType }

func (f File) Filename() string { return filepath.Base(f.Path) }

// Chunks reads the file sequentially in increments of size bytes.  A read
// that returns no bytes terminates the sequence.  A read error mid-sequence
// aborts chunk production and is yielded to the consumer.
func (f File) Chunks(size int) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		file, err := os.Open(f.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				err = fmt.Errorf("%w: %s", ErrSourceNotFound, f.Path)
			}
			yield(Chunk{}, err)
			return
		}
		defer file.Close()

		for index := 0; ; index++ {
			buf := make([]byte, size)
			n, err := io.ReadFull(file, buf)
			if n > 0 {
				if !yield(Chunk{Index: index, Data: buf[:n]}, nil) {
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					return
				}
				yield(Chunk{}, fmt.Errorf("read %s: %w", f.Path, err))
				return
			}
		}
	}
}

// Bytes is a payload held entirely in memory, i.e. media downloaded from a
// URL before being re-uploaded.
type Bytes struct {
	Data []byte
	// DeclaredType is the MIME type of Data, as reported by whoever produced
	// it (e.g. the Content-Type header of the download response).
	DeclaredType string
	// Name optionally gives a filename for MIME type inference when
	// DeclaredType is empty.
	Name string
}

var _ Payload = Bytes{}

func (b Bytes) Size() (int64, error) { return int64(len(b.Data)), nil }

func (b Bytes) ContentType() string { return b.DeclaredType }

func (b Bytes) Filename() string { return b.Name }

// Chunks slices the buffer at offsets 0, size, 2*size, ...; the final chunk
// may be shorter than size.  No copy is made.
func (b Bytes) Chunks(size int) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		for index, off := 0, 0; off < len(b.Data); index, off = index+1, off+size {
			end := min(off+size, len(b.Data))
			if !yield(Chunk{Index: index, Data: b.Data[off:end]}, nil) {
				return
			}
		}
	}
}
