package main

import (
	"os"

	"github.com/adalundhe/drawer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
