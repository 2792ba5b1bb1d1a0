package main

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/harness-provisioner/internal/cli"
	"github.com/blackwell-systems/harness-provisioner/internal/config"
)

var version = "dev"

func main() {
	// Initialize configuration
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}

	os.Exit(cli.ExecuteUsers(version))
}
