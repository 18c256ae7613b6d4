package main

import "github.com/bchtrade/bchtrade/cmd"

func main() {
	cmd.Execute()
}
