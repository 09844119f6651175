// Package configcmder provides the config command for managing persistent
// chatwidget configuration stored in the .chatwidget/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent chatwidget configuration.

Configuration is stored as config.toml in the .chatwidget/ directory and
provides default values for command flags. CLI flags and CHATWIDGET_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  client.endpoint, client.timeout,
  chat.plain, chat.no_color,
  stub.listen, stub.mode, stub.delay

Use subcommands to get, set, or list configuration values:
  chatwidget config set <key> <value>    Set a configuration value
  chatwidget config get <key>            Get a configuration value
  chatwidget config list                 List all configuration values

Examples:
  chatwidget config set client.endpoint http://localhost:8000/llm
  chatwidget config set stub.mode json
  chatwidget config get client.endpoint
  chatwidget config list`

const configShortDesc string = "Manage persistent chatwidget configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
