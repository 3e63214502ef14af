// Command mathlink drives a Wolfram kernel from the shell, over HTTP or as
// an MCP server.
package main

func main() {
	Execute()
}
