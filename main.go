package main

import "github.com/parlock/parlock/cmd"

func main() {
	cmd.Execute()
}
