package main

import "nathanbeddoewebdev/flexctl/cmd"

func main() {
	cmd.Execute()
}
