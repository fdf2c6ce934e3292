package main

import (
	"os"

	"arbiter/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
