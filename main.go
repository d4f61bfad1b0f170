package main

import "simindex/cmd"

func main() {
	cmd.Execute()
}
