package main

import (
	"fmt"
	"os"

	"resurate/internal/cli"
	"resurate/internal/shared/telemetry"
)

func main() {
	err := cli.Execute()
	telemetry.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
