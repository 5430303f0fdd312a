package main

import "github.com/chriserin/stepjump/cmd"

func main() {
	cmd.Execute()
}
