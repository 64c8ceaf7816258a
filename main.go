package main

import "github.com/zdqhub/zdq/cmd"

func main() {
	cmd.Execute()
}
