package main

import (
	"os"

	"github.com/sofmeright/quack/src/cli/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
