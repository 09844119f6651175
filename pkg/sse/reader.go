package sse

import (
	"errors"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const readBufferSize = 32 * 1024

// Reader pulls fragments from a source io.Reader, runs them through a
// Decoder and returns the decoded Frames one at a time. Each successful Read
// on the source is fed as one fragment, so Frames become available as soon
// as the line that carries them is complete.
//
// ┌──────────────────┐
// │ source io.Reader │──▶ (optional tee to destination io.Writer)
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │  UTF-8 decoder   │  incremental, holds split characters across reads
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │  Decoder.Feed()  │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │  Reader.Next()   │──▶ Frame
// └──────────────────┘
type Reader struct {
	src io.Reader
	dec *Decoder
	buf []byte

	queue []Frame
	err   error
	done  bool
}

// NewReader returns a Reader that decodes Frames from src.
func NewReader(src io.Reader) *Reader {
	return NewTeeReader(src, nil)
}

// NewTeeReader returns a Reader that decodes Frames from src while writing
// every raw byte read from src to dest. A nil dest disables the tee.
func NewTeeReader(src io.Reader, dest io.Writer) *Reader {
	if dest != nil {
		src = io.TeeReader(src, dest)
	}

	return &Reader{
		// UTF8BOM strips a leading byte order mark and replaces invalid
		// sequences with U+FFFD, the same way a browser TextDecoder does.
		src: transform.NewReader(src, unicode.UTF8BOM.NewDecoder()),
		dec: NewDecoder(),
		buf: make([]byte, readBufferSize),
	}
}

// Next returns the next decoded Frame. It blocks until a complete line is
// available or the source is exhausted. Next returns nil, nil once the source
// is exhausted and the unterminated tail, if any, has been delivered.
//
// A read error is returned after every Frame decoded before it.
func (r *Reader) Next() (*Frame, error) {
	for len(r.queue) == 0 {
		if r.err != nil {
			return nil, r.err
		}
		if r.done {
			return nil, nil
		}
		r.fill()
	}

	frame := r.queue[0]
	r.queue = r.queue[1:]
	return &frame, nil
}

// fill performs a single read on the source and queues the resulting Frames.
func (r *Reader) fill() {
	n, err := r.src.Read(r.buf)
	if n > 0 {
		r.queue = append(r.queue, r.dec.Feed(r.buf[:n])...)
	}

	switch {
	case errors.Is(err, io.EOF):
		r.done = true
		if frame, ok := r.dec.Flush(); ok {
			r.queue = append(r.queue, frame)
		}
	case err != nil:
		r.err = err
	}
}
