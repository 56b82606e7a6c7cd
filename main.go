package main

import "NetCmdLogParser/internal/cmd"

func main() {
	cmd.Execute()
}
