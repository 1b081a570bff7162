// Command frank manages the tables of frank record types.
package main

import (
	"os"

	"github.com/syssam/frank/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
