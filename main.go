package main

import "hoursync/cmd"

func main() {
	cmd.Execute()
}
