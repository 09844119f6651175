package chatcmder

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/chatwidget/pkg/cliui"
	"github.com/papercomputeco/chatwidget/pkg/client"
	"github.com/papercomputeco/chatwidget/pkg/sse"
	"github.com/papercomputeco/chatwidget/pkg/widget"
)

// errAborted is reported when the user aborts the in-flight request.
var errAborted = errors.New("request aborted")

// streamBuffer bounds how many frames the request goroutine may run ahead
// of the event loop.
const streamBuffer = 16

// chrome is the number of rows outside the viewport: status, input, help.
const chrome = 3

type chatKeyMap struct {
	Send   key.Binding
	Abort  key.Binding
	Scroll key.Binding
	Quit   key.Binding
}

func (k chatKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Abort, k.Scroll, k.Quit}
}

func (k chatKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Send, k.Abort}, {k.Scroll, k.Quit}}
}

func defaultKeyMap() chatKeyMap {
	return chatKeyMap{
		Send:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Abort:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "abort")),
		Scroll: key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// frameMsg carries one decoded frame of request id.
type frameMsg struct {
	id    int
	frame sse.Frame
}

// streamDoneMsg ends request id, successfully when err is nil.
type streamDoneMsg struct {
	id  int
	err error
}

type chatModel struct {
	ctx    context.Context
	client *client.Client
	conv   *widget.Conversation

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	keys     chatKeyMap
	help     help.Model

	width  int
	height int

	// requestID identifies the in-flight request so messages from an
	// aborted one are dropped.
	requestID int
	stream    <-chan bubbletea.Msg
	cancel    context.CancelFunc
	started   time.Time
	elapsed   time.Duration
	lastErr   error
}

func runChatTUI(ctx context.Context, c *client.Client) error {
	program := bubbletea.NewProgram(newChatModel(ctx, c),
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	_, err := program.Run()
	if errors.Is(err, bubbletea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newChatModel(ctx context.Context, c *client.Client) chatModel {
	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.Prompt = "> "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cliui.AssistantStyle

	m := chatModel{
		ctx:      ctx,
		client:   c,
		conv:     widget.NewConversation(),
		input:    input,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		keys:     defaultKeyMap(),
		help:     help.New(),
		width:    80,
	}
	m.refresh()
	return m
}

func (m chatModel) Init() bubbletea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chrome, 1)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 1)
		m.refresh()
		return m, nil

	case bubbletea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		if msg.id != m.requestID {
			return m, nil
		}
		m.conv.Receive(msg.frame)
		m.refresh()
		return m, waitForStream(m.stream)

	case streamDoneMsg:
		if msg.id != m.requestID {
			return m, nil
		}
		if msg.err != nil {
			m.conv.Fail(msg.err)
		} else {
			m.conv.Complete()
		}
		m.finish(msg.err)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.conv.Busy() {
			return m, nil
		}
		var cmd bubbletea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, bubbletea.Quit

	case key.Matches(msg, m.keys.Abort):
		if m.conv.Busy() {
			m.conv.Fail(errAborted)
			m.finish(errAborted)
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Send):
		return m.submit()

	case key.Matches(msg, m.keys.Scroll):
		var cmd bubbletea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a request for the input value. Empty input and input
// submitted while a request is in flight are ignored.
func (m chatModel) submit() (bubbletea.Model, bubbletea.Cmd) {
	message, err := m.conv.Submit(m.input.Value())
	if err != nil {
		return m, nil
	}
	m.input.Reset()

	ctx, cancel := context.WithCancel(m.ctx)
	ch := make(chan bubbletea.Msg, streamBuffer)

	m.requestID++
	m.cancel = cancel
	m.stream = ch
	m.started = time.Now()
	go sendMessage(ctx, m.client, message, m.requestID, ch)

	m.refresh()
	return m, bubbletea.Batch(waitForStream(ch), m.spinner.Tick)
}

// finish releases the in-flight request and records how it ended.
func (m *chatModel) finish(err error) {
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = nil
	m.stream = nil
	m.elapsed = time.Since(m.started)
	m.lastErr = err
}

// refresh re-renders the message list into the viewport and scrolls to the
// newest message.
func (m *chatModel) refresh() {
	m.viewport.SetContent(renderMessages(m.conv.Messages(), m.width))
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(cliui.DimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m chatModel) status() string {
	switch {
	case m.conv.Busy() && m.conv.Reply() == "":
		return m.spinner.View() + " " + cliui.DimStyle.Render("Waiting for "+m.client.Endpoint())
	case m.conv.Busy():
		return m.spinner.View() + " " + cliui.DimStyle.Render("Receiving...")
	case m.elapsed > 0:
		return cliui.Mark(m.lastErr) + " " + cliui.DimStyle.Render("Last response ") + cliui.Elapsed(m.elapsed)
	default:
		return cliui.DimStyle.Render("Connected to " + m.client.Endpoint())
	}
}

// sendMessage runs one request and forwards every frame to ch, ending with
// a streamDoneMsg. It gives up as soon as ctx is canceled.
func sendMessage(ctx context.Context, c *client.Client, message string, id int, ch chan<- bubbletea.Msg) {
	defer close(ch)

	forward := func(msg bubbletea.Msg) bool {
		select {
		case ch <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for frame, err := range c.Send(ctx, message) {
		if err != nil {
			forward(streamDoneMsg{id: id, err: err})
			return
		}
		if !forward(frameMsg{id: id, frame: frame}) {
			return
		}
	}
	forward(streamDoneMsg{id: id})
}

func waitForStream(ch <-chan bubbletea.Msg) bubbletea.Cmd {
	if ch == nil {
		return nil
	}
	return func() bubbletea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// renderMessages lays the conversation out as labeled blocks wrapped to width.
func renderMessages(messages []widget.Message, width int) string {
	if width <= 0 {
		width = 80
	}

	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		label := roleStyle(msg.Role).Render(msg.Role.Label())
		blocks = append(blocks, label+"\n"+ansi.Wrap(msg.Content, width, ""))
	}
	return strings.Join(blocks, "\n\n")
}
