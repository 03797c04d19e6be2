// The main package for the tickerscout executable.
package main

import (
	"github.com/tickerscout/tickerscout/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
