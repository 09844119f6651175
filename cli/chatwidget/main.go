package main

import (
	"os"

	chatwidgetcmder "github.com/papercomputeco/chatwidget/cmd/chatwidget"
)

func main() {
	cmd := chatwidgetcmder.NewChatwidgetCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
