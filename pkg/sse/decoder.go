package sse

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Decoder is a stateful transformer from raw stream fragments to Frames.
// It is consumed fragment by fragment with Feed, then Flush is called once
// when the transport signals end of stream.
//
// A Decoder belongs to a single stream and is not safe for concurrent use.
// The zero value is ready to use.
type Decoder struct {
	// pending holds the unterminated tail of the most recent fragment.
	// It never contains a '\n'.
	pending []byte
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends fragment to the pending buffer and returns the Frames for
// every line the fragment completed, in stream order. The trailing fragment
// after the last newline is kept for the next call.
//
// The buffer holds raw bytes, so a fragment boundary inside a multi-byte
// character is harmless: text conversion only happens once a line is complete.
func (d *Decoder) Feed(fragment []byte) []Frame {
	if len(fragment) == 0 {
		return nil
	}

	d.pending = append(d.pending, fragment...)

	last := bytes.LastIndexByte(d.pending, '\n')
	if last < 0 {
		return nil
	}

	var frames []Frame
	for _, line := range bytes.Split(d.pending[:last], []byte{'\n'}) {
		if frame, ok := classify(line); ok {
			frames = append(frames, frame)
		}
	}

	// Copy the tail so the backing array of consumed lines can be released.
	tail := d.pending[last+1:]
	d.pending = append(make([]byte, 0, len(tail)), tail...)

	return frames
}

// Flush classifies the remaining unterminated tail as a final line and
// clears the buffer. It reports false when the tail is blank or is the
// [DONE] sentinel.
func (d *Decoder) Flush() (Frame, bool) {
	tail := d.pending
	d.pending = nil
	return classify(tail)
}

// classify turns a single line without its '\n' terminator into a Frame.
func classify(raw []byte) (Frame, bool) {
	// A single trailing '\r' belongs to a CRLF line terminator.
	raw = bytes.TrimSuffix(raw, []byte{'\r'})

	line := string(raw)
	if !utf8.ValidString(line) {
		line = strings.ToValidUTF8(line, string(utf8.RuneError))
	}

	if strings.TrimSpace(line) == "" {
		return Frame{}, false
	}

	if payload, ok := strings.CutPrefix(line, DataPrefix); ok {
		if payload == DoneSentinel {
			return Frame{}, false
		}
		return DataFrame(payload), true
	}

	return LineFrame(line), true
}
