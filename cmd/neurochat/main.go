package main

import "github.com/neuroai/neurochat/internal/commands"

func main() {
	commands.Execute()
}
