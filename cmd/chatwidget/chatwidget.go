// Package chatwidgetcmder is the root chatwidget command.
package chatwidgetcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/chatwidget/cmd/chatwidget/chat"
	configcmder "github.com/papercomputeco/chatwidget/cmd/chatwidget/config"
	stubcmder "github.com/papercomputeco/chatwidget/cmd/chatwidget/stub"
	versioncmder "github.com/papercomputeco/chatwidget/cmd/version"
)

const chatwidgetLongDesc string = `chatwidget is a terminal chat widget for a single HTTP chat endpoint.

Messages are posted as {"message": "..."}; replies render as they stream in.

Commands:
  chatwidget chat      Chat with the configured endpoint
  chatwidget stub      Run a development backend to chat with
  chatwidget config    Manage persistent configuration`

const chatwidgetShortDesc string = "chatwidget - terminal chat widget"

func NewChatwidgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "chatwidget",
		Short:        chatwidgetShortDesc,
		Long:         chatwidgetLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("log-level", "", "Minimum log level: debug, info, warn or error (overrides --debug)")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default: ./.chatwidget or ~/.chatwidget)")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(stubcmder.NewStubCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
