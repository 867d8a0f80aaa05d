package main

import (
	"os"

	"go-sales-analytics/internal/cli/commands"
)

func main() {
	os.Exit(commands.Execute())
}
