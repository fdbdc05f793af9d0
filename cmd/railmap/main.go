package main

import "github.com/samirrijal/railmap/internal/cli"

func main() {
	cli.Execute()
}
