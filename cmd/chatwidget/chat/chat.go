// Package chatcmder provides the chat command: an interactive terminal chat
// widget backed by a single HTTP endpoint.
package chatcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/chatwidget/pkg/cliui"
	"github.com/papercomputeco/chatwidget/pkg/client"
	"github.com/papercomputeco/chatwidget/pkg/config"
	"github.com/papercomputeco/chatwidget/pkg/logger"
)

type chatCommander struct {
	endpoint   string
	timeout    time.Duration
	plain      bool
	noColor    bool
	dumpStream string
	logFile    string
	debug      bool
	logLevel   string

	in  io.Reader
	out io.Writer
	err io.Writer

	logger *slog.Logger
}

// chatFlags are the registry flags bound to the viper precedence chain.
var chatFlags = []string{
	config.FlagEndpoint,
	config.FlagTimeout,
	config.FlagPlain,
	config.FlagNoColor,
}

const chatLongDesc string = `Start an interactive chat session with a backend endpoint.

Each message is sent as a POST of {"message": "..."} to the endpoint. The
reply is shown as it arrives: streamed text/event-stream and text/plain bodies
render frame by frame, JSON bodies render their "result" in one piece.

When stdin and stdout are terminals a full screen widget is started: Enter
sends, Esc aborts the in-flight request and Ctrl+C quits. Otherwise, or with
--plain, a line-based prompt is used; /exit or Ctrl+D quits.

Examples:
  chatwidget chat
  chatwidget chat --endpoint http://localhost:8000/llm
  chatwidget chat --plain --dump-stream stream.log`

const chatShortDesc string = "Interactive chat with a backend endpoint"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, chatFlags)

			cmder.endpoint = v.GetString("client.endpoint")
			cmder.timeout = v.GetDuration("client.timeout")
			cmder.plain = v.GetBool("chat.plain")
			cmder.noColor = v.GetBool("chat.no_color")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.logLevel, err = cmd.Flags().GetString("log-level")
			if err != nil {
				return fmt.Errorf("could not get log-level flag: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.err = cmd.ErrOrStderr()

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagEndpoint, &cmder.endpoint)
	config.AddDurationFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddBoolFlag(cmd, config.Flags, config.FlagPlain, &cmder.plain)
	config.AddBoolFlag(cmd, config.Flags, config.FlagNoColor, &cmder.noColor)
	cmd.Flags().StringVar(&cmder.dumpStream, "dump-stream", "", "Write a raw copy of every streamed response body to this file")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Append JSON logs to this file")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.noColor || os.Getenv("NO_COLOR") != "" {
		cliui.DisableColor()
	}

	level, err := logger.ResolveLevel(c.debug, c.logLevel)
	if err != nil {
		return err
	}

	interactive := !c.plain && isTerminal(c.in) && isTerminal(c.out)
	stderrLogs := !interactive && (c.debug || c.logLevel != "")

	var logOut io.Writer
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	c.logger = newChatLogger(level, stderrLogs, c.err, logOut)

	var dump io.Writer
	if c.dumpStream != "" {
		f, err := os.Create(c.dumpStream)
		if err != nil {
			return fmt.Errorf("creating stream dump: %w", err)
		}
		defer f.Close()
		dump = f
	}

	cl, err := client.New(client.Config{
		Endpoint:   c.endpoint,
		Timeout:    c.timeout,
		StreamDump: dump,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	c.logger.Debug("starting chat",
		"endpoint", c.endpoint,
		"timeout", c.timeout,
		"interactive", interactive,
	)

	if interactive {
		err = runChatTUI(ctx, cl)
	} else {
		err = runPlain(ctx, cl, c.in, c.out)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newChatLogger builds the chat logger. Pretty output goes to stderr only
// when asked for, and never under the full screen widget; a log file, when
// given, receives JSON records with their source location at debug level.
func newChatLogger(level slog.Level, stderrLogs bool, stderr, logFile io.Writer) *slog.Logger {
	var loggers []*slog.Logger
	if stderrLogs {
		loggers = append(loggers, logger.New(
			logger.WithLevel(level),
			logger.WithPretty(true),
			logger.WithWriter(stderr),
		))
	}
	if logFile != nil {
		loggers = append(loggers, logger.New(
			logger.WithLevel(level),
			logger.WithJSON(true),
			logger.WithSource(level <= slog.LevelDebug),
			logger.WithWriter(logFile),
		))
	}

	switch len(loggers) {
	case 0:
		return logger.Nop()
	case 1:
		return loggers[0]
	default:
		return logger.Multi(loggers...)
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
