package main

import "mpic/cmd"

func main() {
	cmd.Execute()
}
