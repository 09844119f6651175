// Package widget holds the display-side state of the chat widget: the
// accumulator that turns a Frame sequence into one growing text value, and
// the conversation that applies the single-request busy policy.
//
// Nothing here renders; the terminal front ends in cmd/chatwidget/chat draw
// whatever the Conversation holds.
package widget

import (
	"strings"

	"github.com/papercomputeco/chatwidget/pkg/sse"
)

// Accumulator concatenates Frame payloads in arrival order.
// The zero value is ready to use.
type Accumulator struct {
	text   strings.Builder
	frames int
}

// Add appends the frame's payload and returns the accumulated text. first is
// true for the first frame, which is when the caller creates its display
// container.
func (a *Accumulator) Add(frame sse.Frame) (text string, first bool) {
	a.frames++
	a.text.WriteString(frame.Text)
	return a.text.String(), a.frames == 1
}

// Text returns the accumulated text.
func (a *Accumulator) Text() string {
	return a.text.String()
}

// Empty reports whether no frame was added.
func (a *Accumulator) Empty() bool {
	return a.frames == 0
}
