// Command sas7bdat reads SAS7BDAT files and converts them to CSV, Parquet
// or SQLite.
package main

import (
	"fmt"
	"os"

	"github.com/eunmann/sas7bdat/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
