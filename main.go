package main

import "github.com/max-scopp/ts-flattered/cmd"

func main() {
	cmd.Execute()
}
