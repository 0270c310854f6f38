package main

import (
	"os"

	"github.com/caerus-app/caerus-backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
