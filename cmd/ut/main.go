package main

import (
	"fmt"
	"os"

	"uptask/internal/cli"
	"uptask/internal/config"
)

func main() {
	// Pick how the gateway is opened from the environment
	opener := NewGatewayFactory(getEnvironment()).Opener()

	root := cli.NewRootCommand(config.NewLoader(), opener)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.NewErrorHandler().ExitCode(err))
	}
}
