package main

import "go-mindgarden/cmd"

func main() {
	cmd.Execute()
}
