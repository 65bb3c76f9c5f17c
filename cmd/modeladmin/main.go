// Command modeladmin administers the demo user model from the terminal.
package main

import (
	"os"

	"github.com/goliatone/go-modeladmin/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
