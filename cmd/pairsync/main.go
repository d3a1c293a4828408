package main

import "github.com/pairsync/pairsync/internal/cli"

func main() {
	cli.Execute()
}
