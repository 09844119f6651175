// Package sse provides a minimal, purpose-built stream frame decoder for the
// chat widget. It splits a growing text buffer into Server-Sent-Event "data:"
// payloads or plain-text lines and hands completed units to the caller while
// retaining an incomplete trailing fragment for the next read.
//
// Only the "data: " field is interpreted. Other SSE fields ("event:", "id:",
// "retry:") reach the caller verbatim as plain lines.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
package sse

const (
	// DataPrefix is the literal prefix of an SSE data line. The comparison is
	// byte-exact: "data:" without the trailing space is a plain line.
	DataPrefix = "data: "

	// DoneSentinel is the reserved payload marking the logical end of content.
	// It is swallowed, never emitted as a Frame.
	DoneSentinel = "[DONE]"
)

// FrameKind distinguishes the two shapes a decoded Frame can take.
type FrameKind int

const (
	// FrameData is the payload of a "data: " line with the prefix stripped.
	FrameData FrameKind = iota

	// FrameLine is any other non-blank line, emitted verbatim.
	FrameLine
)

func (k FrameKind) String() string {
	switch k {
	case FrameData:
		return "data"
	case FrameLine:
		return "line"
	default:
		return "unknown"
	}
}

// Frame is one decoded unit of streamed content ready for display.
type Frame struct {
	Kind FrameKind
	Text string
}

// DataFrame returns an SSE-data Frame carrying text.
func DataFrame(text string) Frame {
	return Frame{Kind: FrameData, Text: text}
}

// LineFrame returns a plain-line Frame carrying text.
func LineFrame(text string) Frame {
	return Frame{Kind: FrameLine, Text: text}
}
