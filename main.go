package main

import "github.com/josephlewis42/kshell/cmd"

func main() {
	cmd.Execute()
}
