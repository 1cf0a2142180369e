package main

import (
	"os"

	"agora/cmd/agoractl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
