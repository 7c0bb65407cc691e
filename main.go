package main

import "github.com/kasuboski/catalogz/cmd"

func main() {
	cmd.Execute()
}
