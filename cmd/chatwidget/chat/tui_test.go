package chatcmder

import (
	"context"
	"errors"
	"strings"

	bubbletea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatwidget/pkg/sse"
	"github.com/papercomputeco/chatwidget/pkg/stub"
	"github.com/papercomputeco/chatwidget/pkg/widget"
)

func update(m chatModel, msg bubbletea.Msg) (chatModel, bubbletea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(chatModel), cmd
}

func typeAndSend(m chatModel, text string) (chatModel, bubbletea.Cmd) {
	m.input.SetValue(text)
	return update(m, bubbletea.KeyMsg{Type: bubbletea.KeyEnter})
}

// drain feeds every message of the in-flight request into the model.
func drain(m chatModel) chatModel {
	ch := m.stream
	Expect(ch).NotTo(BeNil())
	for msg := range ch {
		m, _ = update(m, msg)
	}
	return m
}

var _ = Describe("Chat TUI model", func() {
	var m chatModel

	newModel := func(mode stub.Mode) {
		ts := stubServer(mode)
		m = newChatModel(context.Background(), newTestClient(ts.URL+"/llm"))
	}

	It("starts empty and idle", func() {
		newModel(stub.ModeJSON)
		Expect(m.conv.Messages()).To(BeEmpty())
		Expect(m.conv.Busy()).To(BeFalse())
		Expect(m.View()).To(ContainSubstring("Connected to"))
	})

	It("ignores empty input", func() {
		newModel(stub.ModeJSON)
		m, cmd := typeAndSend(m, "   ")
		Expect(cmd).To(BeNil())
		Expect(m.conv.Busy()).To(BeFalse())
		Expect(m.conv.Messages()).To(BeEmpty())
	})

	It("clears the input and shows the user message on submit", func() {
		newModel(stub.ModeJSON)
		m, cmd := typeAndSend(m, "  hello  ")
		Expect(cmd).NotTo(BeNil())
		Expect(m.input.Value()).To(BeEmpty())
		Expect(m.conv.Busy()).To(BeTrue())
		Expect(m.conv.Messages()).To(Equal([]widget.Message{{Role: widget.RoleUser, Content: "hello"}}))
		Expect(m.View()).To(ContainSubstring("Waiting for"))

		m = drain(m)
		Expect(m.conv.Busy()).To(BeFalse())
	})

	It("renders a streamed reply", func() {
		newModel(stub.ModeSSE)
		m, _ = typeAndSend(m, "hello world")
		m = drain(m)

		Expect(m.conv.Messages()).To(Equal([]widget.Message{
			{Role: widget.RoleUser, Content: "hello world"},
			{Role: widget.RoleAssistant, Content: "You said: hello world"},
		}))
		Expect(m.viewport.View()).To(ContainSubstring("You said: hello world"))
		Expect(m.View()).To(ContainSubstring("✓ Last response"))
	})

	It("rejects a second submission while busy", func() {
		newModel(stub.ModeJSON)
		m, _ = typeAndSend(m, "first")
		m, cmd := typeAndSend(m, "second")
		Expect(cmd).To(BeNil())
		Expect(m.input.Value()).To(Equal("second"))
		Expect(m.requestID).To(Equal(1))

		m = drain(m)
		Expect(m.conv.Messages()).To(HaveLen(2))
	})

	It("shows request failures as error messages", func() {
		newModel(stub.ModeError)
		m, _ = typeAndSend(m, "hi")
		m = drain(m)

		messages := m.conv.Messages()
		Expect(messages[len(messages)-1]).To(Equal(widget.Message{
			Role:    widget.RoleError,
			Content: "Failed to get response: model unavailable",
		}))
		Expect(m.conv.Busy()).To(BeFalse())
		Expect(m.View()).To(ContainSubstring("✗ Last response"))
	})

	It("aborts the in-flight request on esc and drops its late frames", func() {
		newModel(stub.ModeSSE)
		m, _ = typeAndSend(m, "hi")
		Expect(m.conv.Busy()).To(BeTrue())

		m, _ = update(m, bubbletea.KeyMsg{Type: bubbletea.KeyEsc})
		Expect(m.conv.Busy()).To(BeFalse())
		Expect(m.stream).To(BeNil())

		messages := m.conv.Messages()
		Expect(messages[len(messages)-1].Content).To(Equal("Failed to get response: request aborted"))

		m, _ = update(m, frameMsg{id: 1, frame: sse.DataFrame("late")})
		m, _ = update(m, streamDoneMsg{id: 1, err: errors.New("late")})
		Expect(m.conv.Messages()).To(Equal(messages))
	})

	It("quits on ctrl+c", func() {
		newModel(stub.ModeJSON)
		_, cmd := update(m, bubbletea.KeyMsg{Type: bubbletea.KeyCtrlC})
		Expect(cmd).NotTo(BeNil())
		Expect(cmd()).To(Equal(bubbletea.QuitMsg{}))
	})

	It("resizes the viewport and input to the window", func() {
		newModel(stub.ModeJSON)
		m, _ = update(m, bubbletea.WindowSizeMsg{Width: 40, Height: 12})
		Expect(m.viewport.Width).To(Equal(40))
		Expect(m.viewport.Height).To(Equal(12 - chrome))
		Expect(m.input.Width).To(BeNumerically("<", 40))
	})
})

var _ = Describe("renderMessages", func() {
	It("labels every message by role", func() {
		out := renderMessages([]widget.Message{
			{Role: widget.RoleUser, Content: "hi"},
			{Role: widget.RoleAssistant, Content: "hello"},
			{Role: widget.RoleError, Content: "Failed to get response: boom"},
		}, 80)
		Expect(out).To(Equal("You\nhi\n\nAssistant\nhello\n\nError\nFailed to get response: boom"))
	})

	It("wraps content to the width", func() {
		out := renderMessages([]widget.Message{
			{Role: widget.RoleAssistant, Content: strings.Repeat("word ", 10)},
		}, 12)
		for _, line := range strings.Split(out, "\n") {
			Expect(len(line)).To(BeNumerically("<=", 12))
		}
	})
})
