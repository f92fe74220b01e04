package main

import "github.com/RunjeethNikam/braintrain/cmd"

func main() {
	cmd.Execute()
}
