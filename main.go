package main

import "github.com/panyam/treefill/cmd"

func main() {
	cmd.Execute()
}
