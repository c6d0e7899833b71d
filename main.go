package main

import "github.com/jywlabs/analyst/cmd"

func main() {
	cmd.Execute()
}
