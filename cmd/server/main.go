package main

import "github.com/eventra/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
