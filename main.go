// The main package for the transport-collector executable.
package main

import (
	"github.com/transportlab/transport-data-collector/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
