// Command fieldmap is a command-line interface for mapping NetCDF fields.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp(os.Stdout).root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
