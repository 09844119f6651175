package widget

import (
	"errors"
	"strings"

	"github.com/papercomputeco/chatwidget/pkg/sse"
)

var (
	// ErrBusy is returned when a message is submitted while one is in flight.
	ErrBusy = errors.New("a request is already in flight")

	// ErrEmptyMessage is returned for input that is empty after trimming.
	ErrEmptyMessage = errors.New("message is empty")
)

// NoContentText is shown when a response completes without any frame.
const NoContentText = "No response received."

// Role identifies who a message belongs to.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// Label is the heading shown above a message.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleError:
		return "Error"
	default:
		return "Assistant"
	}
}

// Message is one entry of the message list.
type Message struct {
	Role    Role
	Content string
}

// Conversation is the ordered message list of one widget plus its busy flag.
// It is owned by a single UI loop and is not safe for concurrent use.
type Conversation struct {
	messages []Message
	busy     bool

	acc *Accumulator
	// reply is the index of the assistant message for the in-flight
	// request, or -1 until its first frame arrives.
	reply int
}

// NewConversation returns an empty Conversation.
func NewConversation() *Conversation {
	return &Conversation{reply: -1}
}

// Submit trims input and starts a request for it: the user message is
// appended and the conversation becomes busy. It returns the trimmed message
// to send.
func (c *Conversation) Submit(input string) (string, error) {
	if c.busy {
		return "", ErrBusy
	}

	message := strings.TrimSpace(input)
	if message == "" {
		return "", ErrEmptyMessage
	}

	c.messages = append(c.messages, Message{Role: RoleUser, Content: message})
	c.busy = true
	c.acc = &Accumulator{}
	c.reply = -1

	return message, nil
}

// Receive applies one frame of the in-flight response. The assistant message
// is created on the first frame and replaced by the accumulated text on every
// frame. Frames arriving while idle are ignored.
func (c *Conversation) Receive(frame sse.Frame) {
	if !c.busy {
		return
	}

	text, first := c.acc.Add(frame)
	if first {
		c.messages = append(c.messages, Message{Role: RoleAssistant})
		c.reply = len(c.messages) - 1
	}
	c.messages[c.reply].Content = text
}

// Complete ends the in-flight request successfully. A response without any
// frame gets the no-content fallback message.
func (c *Conversation) Complete() {
	if !c.busy {
		return
	}

	if c.acc.Empty() {
		c.messages = append(c.messages, Message{Role: RoleAssistant, Content: NoContentText})
	}
	c.finish()
}

// Fail ends the in-flight request with err. Frames already received stay in
// place and the error is appended after them.
func (c *Conversation) Fail(err error) {
	if !c.busy {
		return
	}

	c.messages = append(c.messages, Message{
		Role:    RoleError,
		Content: "Failed to get response: " + err.Error(),
	})
	c.finish()
}

func (c *Conversation) finish() {
	c.busy = false
	c.acc = nil
	c.reply = -1
}

// Busy reports whether a request is in flight.
func (c *Conversation) Busy() bool {
	return c.busy
}

// Messages returns a copy of the message list in display order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Reply returns the assistant text accumulated so far for the in-flight request.
func (c *Conversation) Reply() string {
	if c.acc == nil {
		return ""
	}
	return c.acc.Text()
}
