package main

import "github.com/equilens/equilens/internal/cli"

func main() {
	cli.Run()
}
