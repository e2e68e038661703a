// Command brainview renders graph views to PNG and inspects the graph
// backend from the terminal.
package main

import (
	"os"

	"braingraph/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
