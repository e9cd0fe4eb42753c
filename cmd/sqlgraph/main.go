// Command sqlgraph visualizes dependencies between SQL table and view
// definitions as an interactive graph.
package main

import (
	"os"

	"github.com/leapstack-labs/sqlgraph/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
