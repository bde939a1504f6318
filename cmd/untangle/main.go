package main

import "github.com/untangle/untangle/cmd"

func main() {
	cmd.Execute()
}
