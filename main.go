package main

import "urlembed/cmd"

func main() {
	cmd.Execute()
}
