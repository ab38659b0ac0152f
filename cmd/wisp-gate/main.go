package main

import "github.com/wispcms/wispgate/cmd/wisp-gate/cmd"

func main() {
	cmd.Execute()
}
