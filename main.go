package main

import "github.com/gaurav-prasanna/tmplscan/cmd"

func main() {
	cmd.Execute()
}
