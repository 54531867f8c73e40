package main

import "github.com/joshdurbin/bodycode-mcp/internal/cmd"

func main() {
	cmd.Execute()
}
