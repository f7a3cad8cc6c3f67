// Command petsync es el cliente CLI del marketplace de mascotas.
package main

import (
	"fmt"
	"os"

	"pet-marketplace/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
