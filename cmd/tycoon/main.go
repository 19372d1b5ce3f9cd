// Command tycoon runs the Luxury Tycoon game economy.
package main

import (
	"fmt"
	"os"

	"luxury-tycoon/internal/cli"
	"luxury-tycoon/internal/logging"
)

func main() {
	// Replaced by the configured logger once the config is loaded.
	logger := logging.NewLoggerWithConfig(logging.LogConfig{Level: "info", Console: true})
	if err := cli.NewRootCmd(logger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
