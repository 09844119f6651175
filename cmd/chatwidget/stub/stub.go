// Package stubcmder provides the stub command, which runs the development
// backend the chat widget can talk to.
package stubcmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatwidget/pkg/config"
	"github.com/papercomputeco/chatwidget/pkg/logger"
	"github.com/papercomputeco/chatwidget/pkg/stub"
)

type stubCommander struct {
	listen   string
	mode     string
	delay    time.Duration
	debug    bool
	logLevel string

	logger *slog.Logger
}

var stubFlags = []string{
	config.FlagStubListen,
	config.FlagStubMode,
	config.FlagStubDelay,
}

const stubLongDesc string = `Run a development backend for the chat widget.

The stub answers POST /llm by echoing the message back. The mode selects the
response shape:
  json     {"result": "You said: ..."}
  sse      text/event-stream "data: " frames ending with "data: [DONE]"
  text     text/plain lines
  error    500 with {"detail": "model unavailable"}

GET /ping reports health.

Examples:
  chatwidget stub
  chatwidget stub --mode json --listen :9000
  chatwidget stub --mode sse --delay 200ms`

const stubShortDesc string = "Run a development backend"

func NewStubCmd() *cobra.Command {
	cmder := &stubCommander{}

	cmd := &cobra.Command{
		Use:   "stub",
		Short: stubShortDesc,
		Long:  stubLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, stubFlags)

			cmder.listen = v.GetString("stub.listen")
			cmder.mode = v.GetString("stub.mode")
			cmder.delay = v.GetDuration("stub.delay")
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
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStubListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagStubMode, &cmder.mode)
	config.AddDurationFlag(cmd, config.Flags, config.FlagStubDelay, &cmder.delay)

	return cmd
}

func (c *stubCommander) stubConfig() (stub.Config, error) {
	mode, err := stub.ParseMode(c.mode)
	if err != nil {
		return stub.Config{}, err
	}
	if c.delay < 0 {
		return stub.Config{}, fmt.Errorf("invalid delay %s: must not be negative", c.delay)
	}

	return stub.Config{
		ListenAddr: c.listen,
		Mode:       mode,
		Delay:      c.delay,
	}, nil
}

func (c *stubCommander) run() error {
	level, err := logger.ResolveLevel(c.debug, c.logLevel)
	if err != nil {
		return err
	}
	c.logger = logger.New(logger.WithLevel(level), logger.WithPretty(true))

	cfg, err := c.stubConfig()
	if err != nil {
		return err
	}

	server := stub.New(cfg, c.logger)
	defer server.Shutdown()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("stub backend error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return nil
	}
}
