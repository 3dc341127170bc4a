package main

import "github.com/emiliopalmerini/punchclock/internal/cli"

func main() {
	cli.Execute()
}
