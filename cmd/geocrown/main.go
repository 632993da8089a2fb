package main

import "github.com/canopy-tools/geocrown/cmd/geocrown/cmd"

func main() {
	cmd.Execute()
}
