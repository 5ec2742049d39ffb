package main

import "github.com/khanhnv2901/secheaders/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
