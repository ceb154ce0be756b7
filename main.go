package main

import "github.com/Wumpf/issue-explorer/cmd"

func main() {
	cmd.Execute()
}
