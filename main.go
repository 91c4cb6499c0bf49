package main

import "github.com/killallgit/agui/cmd"

func main() {
	cmd.Execute()
}
