package main

import "github.com/kamusis/minirag/cmd"

func main() {
	cmd.Execute()
}
