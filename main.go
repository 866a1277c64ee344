package main

import (
	"os"

	"github.com/anevia/anevia/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
