package main

import "github.com/keydex/keydex/cmd"

func main() {
	cmd.Execute()
}
