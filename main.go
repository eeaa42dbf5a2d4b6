package main

import "github.com/RyanBlaney/sample-analyzer/cmd"

func main() {
	cmd.Execute()
}
