package main

import "github.com/kozaktomas/face-sieve/cmd"

func main() {
	cmd.Execute()
}
