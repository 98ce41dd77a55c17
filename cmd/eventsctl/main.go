package main

import "github.com/lomoval/eventstore/internal/cli"

func main() {
	cli.Execute()
}
