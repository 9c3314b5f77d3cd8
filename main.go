package main

import "github.com/atikulmunna/grokline/internal/cmd"

func main() {
	cmd.Execute()
}
