package main

import "github.com/Tzuyuchae/QuickThoughts/internal/cli"

func main() {
	cli.Execute()
}
