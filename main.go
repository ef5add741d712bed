package main

import "github.com/quotescope/quotescope/cmd"

func main() {
	cmd.Execute()
}
