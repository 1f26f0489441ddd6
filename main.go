package main

import "github.com/ghreceipt/ghreceipt/cmd"

func main() {
	cmd.Execute()
}
