package main

import "jobfill/cmd"

func main() {
	cmd.Execute()
}
