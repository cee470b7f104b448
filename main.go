package main

import "github.com/mj1618/a11y-mcp/cmd"

func main() {
	cmd.Execute()
}
