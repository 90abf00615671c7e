// Command imagepicker runs the image picker flow against a simulated device.
package main

import (
	"os"

	"github.com/go-drift/imagepicker/cmd/imagepicker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
