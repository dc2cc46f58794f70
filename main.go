package main

import "github.com/killallgit/promptvault/cmd"

func main() {
	cmd.Execute()
}
