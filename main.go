package main

import "partition-manager/cmd"

func main() {
	cmd.Execute()
}
