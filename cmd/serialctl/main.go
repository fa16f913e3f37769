package main

import "github.com/crossport/serial/cmd"

func main() {
	cmd.Execute()
}
