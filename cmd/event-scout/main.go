package main

import (
	"os"

	"github.com/pfrederiksen/event-scout/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
