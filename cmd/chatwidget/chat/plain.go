package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/chatwidget/pkg/cliui"
	"github.com/papercomputeco/chatwidget/pkg/client"
	"github.com/papercomputeco/chatwidget/pkg/widget"
)

const exitCommand = "/exit"

func roleStyle(role widget.Role) lipgloss.Style {
	switch role {
	case widget.RoleUser:
		return cliui.UserStyle
	case widget.RoleError:
		return cliui.ErrorStyle
	default:
		return cliui.AssistantStyle
	}
}

func prompt(role widget.Role) string {
	return roleStyle(role).Render(role.Label() + ": ")
}

// runPlain is the line-based front end: one message per input line, each
// frame printed as soon as it arrives.
func runPlain(ctx context.Context, c *client.Client, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "\n  %s %s\n",
		cliui.KeyStyle.Render("Endpoint:"),
		cliui.ValueStyle.Render(c.Endpoint()),
	)
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	conv := widget.NewConversation()
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, prompt(widget.RoleUser))
		if !scanner.Scan() {
			break
		}

		input := scanner.Text()
		if input == exitCommand {
			break
		}

		message, err := conv.Submit(input)
		if errors.Is(err, widget.ErrEmptyMessage) {
			continue
		}
		if err != nil {
			return err
		}

		if err := exchange(ctx, c, conv, message, out); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out)
	return nil
}

// exchange sends one message and prints the response. The assistant label
// is printed with the first frame. Request failures are shown inline; only a
// canceled parent context ends the session.
func exchange(ctx context.Context, c *client.Client, conv *widget.Conversation, message string, out io.Writer) error {
	start := time.Now()

	var acc widget.Accumulator
	for frame, err := range c.Send(ctx, message) {
		if err != nil {
			conv.Fail(err)
			if !acc.Empty() {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s%s\n\n", prompt(widget.RoleError), lastContent(conv))
			return ctx.Err()
		}

		conv.Receive(frame)
		if _, first := acc.Add(frame); first {
			fmt.Fprint(out, prompt(widget.RoleAssistant))
		}
		fmt.Fprint(out, frame.Text)
	}

	conv.Complete()
	if acc.Empty() {
		fmt.Fprint(out, prompt(widget.RoleAssistant)+lastContent(conv))
	}
	fmt.Fprintf(out, " %s\n\n", cliui.Elapsed(time.Since(start)))
	return nil
}

func lastContent(conv *widget.Conversation) string {
	messages := conv.Messages()
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1].Content
}
