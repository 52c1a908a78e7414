package main

import "github.com/openshelf/libctl/internal/cli"

func main() {
	cli.Execute()
}
