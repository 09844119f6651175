package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatwidget/pkg/cliui"
	"github.com/papercomputeco/chatwidget/pkg/config"
)

const listLongDesc string = `List every configuration key.

Shows each key's effective value (stored or default) next to a short
description. Keys that are unset and have no default show <not set>.

Examples:
  chatwidget config list
  chatwidget config list --config-dir ./.chatwidget`

const listShortDesc string = "List every configuration key"

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(cmd.OutOrStdout(), configDir)
		},
	}
}

func runList(w io.Writer, configDir string) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	printTarget(w, cfger.GetTarget())

	keys := config.ValidConfigKeys()
	width := 0
	for _, key := range keys {
		width = max(width, len(key))
	}

	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}

		shown := "<not set>"
		if value != "" {
			shown = fmt.Sprintf("%q", value)
		}
		fmt.Fprintf(w, "  %-*s = %s  %s\n", width, key, shown,
			cliui.DimStyle.Render("# "+config.KeyDescription(key)))
	}
	fmt.Fprintln(w)

	return nil
}
