// Command orderkey computes order keys and manages ordered lists.
//
// Usage:
//
//	orderkey between a c          # b
//	orderkey list add steps "Whisk the eggs"
//	orderkey list move <id> 0
package main

import (
	"fmt"
	"os"

	"github.com/lupppig/orderkey/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
