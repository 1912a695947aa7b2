package main

import "github.com/leaselad/leaselad/cmd"

func main() {
	cmd.Execute()
}
