package main

import "github.com/crossframe-dev/reroute/internal/cli"

func main() {
	cli.Execute()
}
